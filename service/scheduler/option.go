package scheduler

import (
	"log/slog"

	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/progress"
	"github.com/viant/oploader/service/event"
	"github.com/viant/oploader/service/messaging"
	"github.com/viant/oploader/service/processor"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithQueue sets the control event queue. The queue must not block on
// Publish because the dispatch goroutine publishes to it.
func WithQueue(queue messaging.Queue[Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithProgress sets the tracker updated on every state transition
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

// WithPublisher sets the lifecycle event publisher
func WithPublisher(publisher *event.Publisher[operation.Info]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithProcessor sets the worker pool used by RegisterAsync
func WithProcessor(processor *processor.Service) Option {
	return func(s *Service) {
		s.processor = processor
	}
}

// WithTracerProvider sets the provider for activation spans; the global
// provider is used by default.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracerProvider = provider
	}
}
