package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/oploader/service/messaging/memory"
)

func TestListener(t *testing.T) {
	queue := memory.NewQueue[Event[string]](memory.DefaultConfig())
	publisher := NewPublisher[string](queue)

	var mux sync.Mutex
	var received []string
	listener := NewListener[string](publisher, func(e *Event[string]) {
		mux.Lock()
		defer mux.Unlock()
		received = append(received, e.Context.Type+":"+e.Data)
	}, nil)
	listener.Start(context.Background())

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{Type: TypeStarted, Name: "A"}, "A")))
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{Type: TypeCompleted, Name: "A"}, "A")))

	require.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(received) == 2
	}, time.Second, time.Millisecond)
	listener.Stop()

	assert.Equal(t, []string{"started:A", "completed:A"}, received)
}

func TestListener_StopBeforeStart(t *testing.T) {
	queue := memory.NewQueue[Event[string]](memory.DefaultConfig())
	listener := NewListener[string](NewPublisher[string](queue), func(*Event[string]) {}, nil)
	listener.Stop()
}

func TestPublisher_Nil(t *testing.T) {
	var publisher *Publisher[string]
	assert.NoError(t, publisher.Publish(context.Background(), NewEvent(&Context{Type: TypeCycle}, "")))
}
