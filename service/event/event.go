// Package event carries operation lifecycle notifications from the scheduler
// to host listeners.
package event

import "time"

// Types of lifecycle events published by the scheduler.
const (
	TypeStarted   = "started"
	TypeCompleted = "completed"
	TypeRemoved   = "removed"
	TypeCycle     = "cycle"
)

// Context identifies what an event is about.
type Context struct {
	Type       string `json:"type"`
	Name       string `json:"name,omitempty"`
	Activation uint64 `json:"activation,omitempty"`
}

// Event wraps a payload with its context and creation time.
type Event[T any] struct {
	Context   *Context  `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
	Data      T         `json:"data"`
}

// NewEvent creates an event.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Data:      data,
	}
}
