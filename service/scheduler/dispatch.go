package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/viant/oploader/internal/clock"
	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/service/event"
	"github.com/viant/oploader/service/messaging"
	"github.com/viant/oploader/tracing"
)

var errReportedFailure = errors.New("operation reported failure")

// loop is the single consumer of control events.
func (s *Service) loop(ctx context.Context) {
	defer close(s.done)
	for {
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, messaging.ErrClosed) {
				return
			}
			s.logger.Warn("failed to consume control event", "error", err)
			continue
		}
		anEvent := *msg.T()
		_ = msg.Ack()
		s.handle(ctx, anEvent)
	}
}

func (s *Service) handle(ctx context.Context, e Event) {
	switch e.Type {
	case EventWatchdog:
		if s.hasUnexecuted {
			s.publish(Event{Type: EventNext})
		}
		return
	case EventAdded:
		s.hasUnexecuted = true
	}
	s.dispatch(ctx)
}

// dispatch starts at most one ready operation.
func (s *Service) dispatch(ctx context.Context) {
	s.mux.Lock()
	next := s.selectNext()
	s.hasUnexecuted = next.unexecuted
	if next.op == nil {
		var blocked []string
		if next.unexecuted && s.logger.Enabled(ctx, slog.LevelDebug) {
			blocked = s.describeBlocked()
		}
		s.mux.Unlock()
		if next.isCycle() {
			s.logger.Error("no operation can run while work remains; is there a dependency cycle?", "pending", next.pending)
			s.notify(event.TypeCycle, 0, operation.Info{Dependencies: next.pending})
		} else if len(blocked) > 0 {
			s.logger.Debug("no operation found to run", "blocked", blocked)
		}
		return
	}

	op := next.op
	delta := contribution(op).Negate()
	activation := op.Start(clock.Now())
	delta = delta.Add(contribution(op))
	statuses := s.statuses(op)
	_, span := tracing.StartSpan(ctx, s.tracer, "operation.run "+op.Name)
	span.WithAttributes(map[string]string{
		"operation.name":       op.Name,
		"operation.priority":   fmt.Sprint(op.Priority),
		"operation.activation": fmt.Sprint(activation),
		"operation.kind":       op.Kind.String(),
	})
	s.spans[activationKey{op: op, activation: activation}] = span
	info := op.Info()
	s.mux.Unlock()

	s.progress.Started(delta)
	s.logger.Debug("operation starting", "name", op.Name, "activation", activation, "priority", op.Priority)
	s.notify(event.TypeStarted, activation, info)
	s.invoke(op, activation, statuses)
	s.arm()
}

// invoke runs the body on the dispatch goroutine. A panicking body is
// reported as failed so that the loop survives.
func (s *Service) invoke(op *operation.Operation, activation uint64, statuses []operation.Status) {
	done := s.doneFunc(op, activation)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("operation panicked", "name", op.Name, "panic", r)
			done(false)
		}
	}()
	op.Body().OnReady(done, statuses)
}

// doneFunc returns the completion callback of one activation.
func (s *Service) doneFunc(op *operation.Operation, activation uint64) operation.Done {
	var once sync.Once
	return func(success bool) {
		once.Do(func() {
			s.complete(op, activation, success)
		})
	}
}

// complete records a completion report. Reports for an operation that is no
// longer registered under its name, or for an activation that is no longer in
// flight, are ignored.
func (s *Service) complete(op *operation.Operation, activation uint64, success bool) {
	s.mux.Lock()
	key := activationKey{op: op, activation: activation}
	span := s.spans[key]
	delete(s.spans, key)
	accepted := false
	delta := contribution(op).Negate()
	if s.registry.get(op.Name) == op {
		accepted = op.Complete(activation, success, s.stamps.Next())
	}
	delta = delta.Add(contribution(op))
	info := op.Info()
	s.mux.Unlock()

	if !accepted {
		if op.Kind == operation.KindWaiter {
			// waiters remove themselves before reporting
			tracing.EndSpan(span, nil)
			return
		}
		tracing.EndSpan(span, fmt.Errorf("completion of %q ignored: operation was removed or reset", op.Name))
		s.logger.Warn("ignoring completion report", "name", op.Name, "activation", activation, "success", success)
		return
	}
	var spanErr error
	if !success {
		spanErr = errReportedFailure
	}
	tracing.EndSpan(span, spanErr)
	s.progress.Update(delta)
	s.logger.Debug("operation completed", "name", op.Name, "activation", activation, "success", success)
	s.notify(event.TypeCompleted, activation, info)
	s.publish(Event{Type: EventCompleted, Name: op.Name})
}

// arm schedules the fallback tick and, while unexecuted work remains, the
// watchdog. Called on the dispatch goroutine after an operation starts.
func (s *Service) arm() {
	s.timerMux.Lock()
	defer s.timerMux.Unlock()
	if s.stopped {
		return
	}
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
	if s.hasUnexecuted {
		s.watchdog = time.AfterFunc(s.config.WatchdogInterval, func() {
			s.publish(Event{Type: EventWatchdog})
		})
	}
	if s.tick == nil {
		s.tick = time.AfterFunc(s.config.TickInterval, func() {
			s.publish(Event{Type: EventNext})
		})
		return
	}
	s.tick.Reset(s.config.TickInterval)
}

// statuses lists the latest outcome of each dependency. Caller holds mux and
// has checked that every dependency is registered.
func (s *Service) statuses(op *operation.Operation) []operation.Status {
	if len(op.Dependencies) == 0 {
		return []operation.Status{}
	}
	ret := make([]operation.Status, 0, len(op.Dependencies))
	for _, name := range op.Dependencies {
		status := operation.Status{Name: name}
		if dep := s.registry.get(name); dep != nil {
			status.Success = dep.Success()
		}
		ret = append(ret, status)
	}
	return ret
}

// describeBlocked lists waiting operations as "name: dep dep*", where * marks
// dependencies that are missing or not completed. Caller holds mux.
func (s *Service) describeBlocked() []string {
	var ret []string
	for _, op := range s.registry.list() {
		if op.IsCompleted() || op.IsExecuting() {
			continue
		}
		var b strings.Builder
		b.WriteString(op.Name)
		b.WriteString(":")
		for _, name := range op.Dependencies {
			b.WriteString(" ")
			b.WriteString(name)
			if dep := s.registry.get(name); dep == nil || !dep.IsCompleted() {
				b.WriteString("*")
			}
		}
		ret = append(ret, b.String())
	}
	return ret
}
