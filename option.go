package oploader

import (
	"log/slog"

	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/progress"
	"github.com/viant/oploader/service/dao"
	"github.com/viant/oploader/service/event"
	"github.com/viant/oploader/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Service.
type Option func(s *Service)

// WithConfig sets the configuration; nil keeps the defaults.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the logger, overriding Config.Log.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLogHandlers adds handlers receiving every record of the default logger.
func WithLogHandlers(handlers ...slog.Handler) Option {
	return func(s *Service) {
		s.logHandlers = append(s.logHandlers, handlers...)
	}
}

// WithListener adds a handler for operation lifecycle events. Handlers run
// on a dedicated goroutine in publication order.
func WithListener(listener func(*event.Event[operation.Info])) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listener)
	}
}

// WithProgressListener sets the callback invoked on every counter change.
func WithProgressListener(onChange func(progress.Progress)) Option {
	return func(s *Service) {
		s.onProgress = onChange
	}
}

// WithJournal sets the store receiving operation outcomes.
func WithJournal(journal dao.Service[string, operation.Info]) Option {
	return func(s *Service) {
		s.journal = journal
	}
}

// WithTracerProvider sets the provider used for activation spans.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracerProvider = provider
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// spans are written to stdout. The function is safe to call multiple times – the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.initErrs = append(s.initErrs, tracing.Init(serviceName, serviceVersion, outputFile))
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter. This enables
// integrations with exporters other than the built-in stdout exporter, for example OTLP, Jaeger or
// Zipkin. The function is safe to call multiple times – the first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.initErrs = append(s.initErrs, tracing.InitWithExporter(serviceName, serviceVersion, exporter))
	}
}
