package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	testCases := []struct {
		input  string
		expect slog.Level
	}{
		{input: "debug", expect: slog.LevelDebug},
		{input: "WARN", expect: slog.LevelWarn},
		{input: "error", expect: slog.LevelError},
		{input: "", expect: slog.LevelInfo},
		{input: "bogus", expect: slog.LevelInfo},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expect, Level(tc.input))
		})
	}
}

func TestNew_Fanout(t *testing.T) {
	primary := &bytes.Buffer{}
	secondary := &bytes.Buffer{}
	log := New("info", "json", primary, slog.NewTextHandler(secondary, nil))
	log.Debug("hidden")
	log.Info("visible", "name", "A")

	assert.Contains(t, primary.String(), `"msg":"visible"`)
	assert.NotContains(t, primary.String(), "hidden")
	assert.Contains(t, secondary.String(), "msg=visible")
}
