// Package messaging defines the queue contract shared by the scheduler's
// control stream, the async job processor and lifecycle events.
package messaging

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned when publishing to or consuming from a closed queue.
	ErrClosed = errors.New("messaging: queue closed")

	// ErrRetriesExhausted is returned by Nack when the message will not be
	// redelivered.
	ErrRetriesExhausted = errors.New("messaging: retries exhausted")

	// ErrProcessed is returned when a message is acknowledged twice.
	ErrProcessed = errors.New("messaging: message already processed")
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// ID returns the message identifier
	ID() string

	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
