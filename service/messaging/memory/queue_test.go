package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/oploader/service/messaging"
)

type TestPayload struct {
	ID    string
	Count int
}

func TestQueue(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, queue.Publish(ctx, &TestPayload{ID: "msg", Count: i}))
	}
	assert.Equal(t, 3, queue.Size())

	for i := 0; i < 3; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, message.T().Count, "messages must be delivered in publish order")
		assert.NotEmpty(t, message.ID())
		assert.NoError(t, message.Ack())
		assert.ErrorIs(t, message.Ack(), messaging.ErrProcessed)
	}
	assert.Equal(t, 0, queue.Size())
}

func TestQueue_PublishFromConsumer(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, queue.Publish(ctx, &TestPayload{Count: 0}))
	for i := 0; i < 500; i++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		_ = message.Ack()
		require.NoError(t, queue.Publish(ctx, &TestPayload{Count: message.T().Count + 1}))
	}
	assert.Equal(t, 1, queue.Size())
}

func TestQueueRetries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[TestPayload](config)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, queue.Publish(ctx, &TestPayload{ID: "retry-test"}))

	cause := errors.New("boom")
	for attempt := 0; attempt < 2; attempt++ {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		assert.Equal(t, "retry-test", message.T().ID)
		assert.NoError(t, message.Nack(cause))
	}

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, message.Nack(cause), messaging.ErrRetriesExhausted)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, 1, queue.DLQSize())
}

func TestQueue_Close(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	done := make(chan error, 1)
	go func() {
		_, err := queue.Consume(context.Background())
		done <- err
	}()
	queue.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, messaging.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("consumer was not released by Close")
	}
	assert.ErrorIs(t, queue.Publish(context.Background(), &TestPayload{}), messaging.ErrClosed)
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = queue.Publish(ctx, &TestPayload{Count: i})
			}
		}()
	}

	received := 0
	for received < producers*perProducer {
		message, err := queue.Consume(ctx)
		require.NoError(t, err)
		_ = message.Ack()
		received++
	}
	wg.Wait()
	assert.Equal(t, 0, queue.Size())
}
