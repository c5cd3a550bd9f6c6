// Package memory provides an in-process, unbounded messaging.Queue.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/viant/oploader/internal/idgen"
	"github.com/viant/oploader/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	DeadLetter bool
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		DeadLetter: true,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
	lastErr    error
}

// ID returns the message identifier
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Retries returns how many times the message has been redelivered
func (m *Message[T]) Retries() int {
	return m.retryCount
}

// Err returns the error passed to the latest Nack
func (m *Message[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrProcessed
	}
	m.processed = true
	return nil
}

// Nack indicates a failure in processing the message. The message is
// redelivered after RetryDelay while retries remain, otherwise it is moved to
// the dead letter list (when enabled) and ErrRetriesExhausted is returned.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	if m.processed {
		m.mu.Unlock()
		return messaging.ErrProcessed
	}
	m.processed = true
	m.lastErr = err
	m.mu.Unlock()

	q := m.queue
	if m.retryCount < q.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      q,
			retryCount: m.retryCount + 1,
			createdAt:  m.createdAt,
		}
		time.AfterFunc(q.config.RetryDelay, func() { q.push(retry) })
		return nil
	}
	if q.config.DeadLetter {
		q.mux.Lock()
		q.dlq = append(q.dlq, m)
		q.mux.Unlock()
	}
	return messaging.ErrRetriesExhausted
}

// Queue implements an in-memory messaging.Queue. Publish never blocks, so a
// consumer may safely publish to the queue it is draining.
type Queue[T any] struct {
	config   Config
	mux      sync.Mutex
	messages []*Message[T]
	dlq      []*Message[T]
	signal   chan struct{}
	closed   chan struct{}
	once     sync.Once
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Queue[T]{
		config: config,
		signal: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.isClosed() {
		return messaging.ErrClosed
	}
	q.push(&Message[T]{
		id:        idgen.New(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	})
	return nil
}

func (q *Queue[T]) push(msg *Message[T]) {
	if q.isClosed() {
		return
	}
	q.mux.Lock()
	q.messages = append(q.messages, msg)
	q.mux.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Consume retrieves a single item from the queue, blocking until one is
// available, the context is done or the queue is closed.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	for {
		if msg := q.pop(); msg != nil {
			return msg, nil
		}
		select {
		case <-q.signal:
		case <-q.closed:
			return nil, messaging.ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue[T]) pop() *Message[T] {
	q.mux.Lock()
	defer q.mux.Unlock()
	if len(q.messages) == 0 {
		return nil
	}
	msg := q.messages[0]
	q.messages[0] = nil
	q.messages = q.messages[1:]
	if len(q.messages) > 0 {
		select {
		case q.signal <- struct{}{}:
		default:
		}
	}
	return msg
}

// Close stops the queue; pending messages are dropped.
func (q *Queue[T]) Close() {
	q.once.Do(func() {
		close(q.closed)
		q.mux.Lock()
		q.messages = nil
		q.mux.Unlock()
	})
}

func (q *Queue[T]) isClosed() bool {
	select {
	case <-q.closed:
		return true
	default:
		return false
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return len(q.dlq)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
