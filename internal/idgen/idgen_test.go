package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamed(t *testing.T) {
	testCases := []struct {
		name   string
		prefix string
		expect string
	}{
		{name: "with prefix", prefix: "wait-for", expect: "wait-for/"},
		{name: "no prefix", prefix: "", expect: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := Named(tc.prefix)
			assert.True(t, strings.HasPrefix(id, tc.expect))
			assert.NotEqual(t, id, Named(tc.prefix))
		})
	}
}

func TestNew_Stubbed(t *testing.T) {
	prev := NewFunc
	NewFunc = func() string { return "fixed" }
	defer func() { NewFunc = prev }()
	assert.Equal(t, "op/fixed", Named("op"))
}
