package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/oploader/internal/clock"
	"github.com/viant/oploader/internal/idgen"
	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/progress"
	"github.com/viant/oploader/service/event"
	"github.com/viant/oploader/service/messaging"
	"github.com/viant/oploader/service/messaging/memory"
	"github.com/viant/oploader/service/processor"
	"github.com/viant/oploader/tracing"
	"go.opentelemetry.io/otel/trace"
)

// ErrAlreadyStarted is returned by Start when the dispatch loop already runs.
var ErrAlreadyStarted = errors.New("scheduler: already started")

// waiterPrefix names the helper operations registered by WaitFor.
const waiterPrefix = "wait-for"

// Service owns a registry of operations and the dispatch loop running them.
type Service struct {
	config         Config
	logger         *slog.Logger
	queue          messaging.Queue[Event]
	ownsQueue      bool
	progress       *progress.Progress
	publisher      *event.Publisher[operation.Info]
	processor      *processor.Service
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	stamps         clock.Sequence

	// mux guards the registry, every operation's state and spans.
	mux      sync.Mutex
	registry *registry
	spans    map[activationKey]*tracing.Span

	// owned by the dispatch goroutine
	hasUnexecuted bool

	runMux  sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	timerMux sync.Mutex
	stopped  bool
	tick     *time.Timer
	watchdog *time.Timer
}

type activationKey struct {
	op         *operation.Operation
	activation uint64
}

// New creates a scheduler. Call Start to run the dispatch loop; operations
// registered before that are kept and considered once it runs.
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:   DefaultConfig(),
		registry: newRegistry(),
		spans:    map[activationKey]*tracing.Span{},
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "scheduler")
	if s.queue == nil {
		s.queue = memory.NewQueue[Event](memory.Config{})
		s.ownsQueue = true
	}
	s.tracer = tracing.Tracer(s.tracerProvider)
	return s, nil
}

// Start launches the dispatch loop. It returns immediately; the loop runs
// until ctx is done or Shutdown is called.
func (s *Service) Start(ctx context.Context) error {
	s.runMux.Lock()
	defer s.runMux.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Debug("scheduler started", "tick", s.config.TickInterval, "watchdog", s.config.WatchdogInterval)
	go s.loop(s.ctx)
	return nil
}

// Shutdown stops the dispatch loop and drops pending ticks. Bodies already
// running are not interrupted; their completion reports are still recorded.
func (s *Service) Shutdown() {
	s.timerMux.Lock()
	s.stopped = true
	if s.tick != nil {
		s.tick.Stop()
	}
	if s.watchdog != nil {
		s.watchdog.Stop()
	}
	s.timerMux.Unlock()

	s.runMux.Lock()
	started := s.started
	cancel := s.cancel
	s.runMux.Unlock()
	if !started {
		return
	}
	cancel()
	<-s.done
	if closer, ok := s.queue.(interface{ Close() }); ok && s.ownsQueue {
		closer.Close()
	}
	s.logger.Debug("scheduler stopped")
}

// Register adds op, replacing any operation with the same name. The
// operation is reset to pending; a replaced record that is still executing
// is orphaned and its completion report ignored.
func (s *Service) Register(op *operation.Operation) {
	if op == nil || op.Name == "" {
		panic("scheduler: operation must have a name")
	}
	if op.Body() == nil {
		panic(fmt.Sprintf("scheduler: operation %q has no body", op.Name))
	}
	s.mux.Lock()
	var delta progress.Delta
	prev := s.registry.get(op.Name)
	if prev != nil {
		delta = contribution(prev).Negate()
	}
	orphaned := s.detachSpan(prev)
	op.Reset()
	s.registry.put(op)
	delta = delta.Add(contribution(op))
	s.mux.Unlock()

	endDetached(prev, orphaned, "replaced")
	s.progress.Update(delta)
	s.logger.Debug("operation added", "name", op.Name, "priority", op.Priority, "dependencies", op.Dependencies, "kind", op.Kind.String())
	s.publish(Event{Type: EventAdded, Name: op.Name})
}

// RegisterBody creates and registers an operation.
func (s *Service) RegisterBody(name string, dependencies []string, priority int, body operation.Body) {
	s.Register(operation.New(name, dependencies, priority, body))
}

// RegisterFunc registers a normal priority operation that runs fn and reports
// success once it returns.
func (s *Service) RegisterFunc(name string, dependencies []string, fn func()) {
	s.Register(operation.NewFunc(name, dependencies, fn))
}

// RegisterAsync registers an operation whose work runs on the processor's
// workers instead of the dispatch goroutine. The operation succeeds when fn
// returns nil, after the processor's retries.
func (s *Service) RegisterAsync(name string, dependencies []string, priority int, fn processor.Func) {
	if s.processor == nil {
		panic("scheduler: RegisterAsync requires a processor")
	}
	s.RegisterBody(name, dependencies, priority, operation.BodyFunc(func(done operation.Done, statuses []operation.Status) {
		job := processor.Job{Name: name, Statuses: statuses, Run: fn, Done: done}
		if err := s.processor.Submit(s.loopContext(), job); err != nil {
			s.logger.Warn("failed to submit operation", "name", name, "error", err)
			done(false)
		}
	}))
}

// Remove deletes the named operation and returns it, or nil when unknown.
// A running body is not stopped; its later completion report is ignored.
func (s *Service) Remove(name string) *operation.Operation {
	s.mux.Lock()
	op := s.registry.remove(name)
	var info operation.Info
	var delta progress.Delta
	if op != nil {
		info = op.Info()
		delta = contribution(op).Negate()
	}
	orphaned := s.detachSpan(op)
	s.mux.Unlock()

	endDetached(op, orphaned, "removed")
	if op != nil {
		s.progress.Update(delta)
		s.logger.Debug("operation removed", "name", name)
		s.notify(event.TypeRemoved, 0, info)
	}
	s.publish(Event{Type: EventRemoved, Name: name})
	return op
}

// Retrigger makes the named operation run again, which in turn makes its
// dependents stale. It returns false when the operation is unknown or is
// currently executing.
func (s *Service) Retrigger(name string) bool {
	s.mux.Lock()
	op := s.registry.get(name)
	if op == nil || op.IsExecuting() {
		s.mux.Unlock()
		return false
	}
	delta := contribution(op).Negate()
	op.Reset()
	delta = delta.Add(contribution(op))
	s.mux.Unlock()

	s.progress.Update(delta)
	s.logger.Debug("operation retriggered", "name", name)
	s.publish(Event{Type: EventNext, Name: name})
	return true
}

// HasExecuted reports whether the named operation is completed. Unknown
// names read as not executed.
func (s *Service) HasExecuted(name string) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	op := s.registry.get(name)
	return op != nil && op.IsCompleted()
}

// HasAllExecuted reports whether every named operation is completed; true
// when no names are given.
func (s *Service) HasAllExecuted(names ...string) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, name := range names {
		op := s.registry.get(name)
		if op == nil || !op.IsCompleted() {
			return false
		}
	}
	return true
}

// HasPendingWork reports whether any registered operation is not completed.
func (s *Service) HasPendingWork() bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, op := range s.registry.list() {
		if !op.IsCompleted() {
			return true
		}
	}
	return false
}

// WaitFor runs callback once every named operation has completed. When they
// already have, callback runs immediately on the caller's goroutine;
// otherwise a one-shot helper operation depending on names runs it on the
// dispatch goroutine and removes itself. Names that are never registered
// keep the callback waiting.
func (s *Service) WaitFor(names []string, callback func()) {
	if s.HasAllExecuted(names...) {
		callback()
		return
	}
	name := idgen.Named(waiterPrefix)
	waiter := operation.New(name, names, operation.NormalPriority, operation.BodyFunc(func(done operation.Done, _ []operation.Status) {
		callback()
		s.Remove(name)
		done(true)
	}))
	waiter.Kind = operation.KindWaiter
	s.Register(waiter)
}

// Lookup returns a snapshot of the named operation.
func (s *Service) Lookup(name string) (operation.Info, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	op := s.registry.get(name)
	if op == nil {
		return operation.Info{}, false
	}
	return op.Info(), true
}

// Snapshot returns every registered operation in registration order.
func (s *Service) Snapshot() []operation.Info {
	s.mux.Lock()
	defer s.mux.Unlock()
	ret := make([]operation.Info, 0, s.registry.len())
	for _, op := range s.registry.list() {
		ret = append(ret, op.Info())
	}
	return ret
}

// Progress returns the attached tracker, or nil.
func (s *Service) Progress() *progress.Progress {
	return s.progress
}

func (s *Service) loopContext() context.Context {
	s.runMux.Lock()
	defer s.runMux.Unlock()
	return s.ctx
}

// publish hands a control event to the dispatch loop.
func (s *Service) publish(e Event) {
	if err := s.queue.Publish(context.Background(), &e); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, messaging.ErrClosed) {
			level = slog.LevelDebug
		}
		s.logger.Log(context.Background(), level, "failed to publish control event", "type", e.Type.String(), "name", e.Name, "error", err)
	}
}

// notify publishes a lifecycle event to the host, if a publisher is attached.
func (s *Service) notify(eventType string, activation uint64, info operation.Info) {
	if s.publisher == nil {
		return
	}
	anEvent := event.NewEvent(&event.Context{Type: eventType, Name: info.Name, Activation: activation}, info)
	if err := s.publisher.Publish(context.Background(), anEvent); err != nil {
		s.logger.Debug("failed to publish lifecycle event", "type", eventType, "name", info.Name, "error", err)
	}
}

// detachSpan takes the span of op's in-flight activation out of the map.
// Caller holds mux.
func (s *Service) detachSpan(op *operation.Operation) *tracing.Span {
	if op == nil || !op.IsExecuting() {
		return nil
	}
	key := activationKey{op: op, activation: op.Activation()}
	span := s.spans[key]
	delete(s.spans, key)
	return span
}

// endDetached ends the span of an activation whose record left the registry
// before reporting; its later report finds no span.
func endDetached(op *operation.Operation, span *tracing.Span, reason string) {
	if span == nil {
		return
	}
	if op.Kind == operation.KindWaiter {
		tracing.EndSpan(span, nil)
		return
	}
	tracing.EndSpan(span, fmt.Errorf("operation %q %s while executing", op.Name, reason))
}

// contribution is what op adds to the progress counters in its current state.
func contribution(op *operation.Operation) progress.Delta {
	switch op.State() {
	case operation.StateExecuting:
		return progress.Delta{Total: 1, Executing: 1}
	case operation.StateCompleted:
		if op.Success() {
			return progress.Delta{Total: 1, Completed: 1}
		}
		return progress.Delta{Total: 1, Completed: 1, Failed: 1}
	default:
		return progress.Delta{Total: 1, Pending: 1}
	}
}
