package oploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/viant/oploader/internal/logger"
	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/progress"
	"github.com/viant/oploader/service/dao"
	"github.com/viant/oploader/service/dao/criteria"
	"github.com/viant/oploader/service/dao/fs"
	"github.com/viant/oploader/service/dao/memory"
	"github.com/viant/oploader/service/event"
	mmemory "github.com/viant/oploader/service/messaging/memory"
	"github.com/viant/oploader/service/processor"
	"github.com/viant/oploader/service/scheduler"
	"github.com/viant/oploader/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Service wires a scheduler with its processor, lifecycle listeners,
// progress tracker and outcome journal.
type Service struct {
	config         *Config
	logger         *slog.Logger
	logHandlers    []slog.Handler
	listeners      []func(*event.Event[operation.Info])
	onProgress     func(progress.Progress)
	journal        dao.Service[string, operation.Info]
	tracerProvider trace.TracerProvider
	initErrs       []error

	progress  *progress.Progress
	events    *mmemory.Queue[event.Event[operation.Info]]
	listener  *event.Listener[operation.Info]
	processor *processor.Service
	scheduler *scheduler.Service
}

// New creates a service. Operations may be registered on Scheduler before
// Start is called.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(s)
	}
	if err := errors.Join(s.initErrs...); err != nil {
		return nil, fmt.Errorf("failed to initialise tracing: %w", err)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFromConfig creates a service from cfg; options are applied afterwards.
func NewFromConfig(cfg *Config, options ...Option) (*Service, error) {
	return New(append([]Option{WithConfig(cfg)}, options...)...)
}

func (s *Service) init() (err error) {
	if s.logger == nil {
		s.logger = logger.New(s.config.Log.Level, s.config.Log.Format, os.Stderr, s.logHandlers...)
	}
	if cfg := s.config.Tracing; cfg.Enabled && s.tracerProvider == nil {
		if err = tracing.Init(cfg.ServiceName, cfg.ServiceVersion, cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	if s.journal == nil {
		if s.journal, err = s.newJournal(); err != nil {
			return err
		}
	}
	s.progress = progress.New(s.onProgress)
	s.events = mmemory.NewQueue[event.Event[operation.Info]](mmemory.Config{})
	publisher := event.NewPublisher[operation.Info](s.events)
	s.listener = event.NewListener(publisher, s.dispatch, s.logger)

	if s.processor, err = processor.New(processor.WithConfig(s.config.Processor), processor.WithLogger(s.logger)); err != nil {
		return err
	}
	s.scheduler, err = scheduler.New(
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithLogger(s.logger),
		scheduler.WithProgress(s.progress),
		scheduler.WithPublisher(publisher),
		scheduler.WithProcessor(s.processor),
		scheduler.WithTracerProvider(s.tracerProvider),
	)
	return err
}

func (s *Service) newJournal() (dao.Service[string, operation.Info], error) {
	key := func(info *operation.Info) string { return info.Name }
	if URL := s.config.Journal.URL; URL != "" {
		store, err := fs.New[operation.Info](context.Background(), URL, key, criteria.Match, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal %v: %w", URL, err)
		}
		return store, nil
	}
	return memory.New[string, operation.Info](key, criteria.Match), nil
}

// Start launches the workers, the listener and the dispatch loop.
func (s *Service) Start(ctx context.Context) error {
	if err := s.processor.Start(ctx); err != nil {
		return err
	}
	s.listener.Start(ctx)
	return s.scheduler.Start(ctx)
}

// Shutdown stops the dispatch loop, the workers and the listener.
func (s *Service) Shutdown() {
	s.scheduler.Shutdown()
	s.processor.Shutdown()
	s.listener.Stop()
	s.events.Close()
}

// Scheduler returns the operation scheduler.
func (s *Service) Scheduler() *scheduler.Service {
	return s.scheduler
}

// Progress returns the operation counters.
func (s *Service) Progress() *progress.Progress {
	return s.progress
}

// Journal returns the outcome store.
func (s *Service) Journal() dao.Service[string, operation.Info] {
	return s.journal
}

// Outcomes lists journaled operations sorted by name; see the criteria
// package for parameter names.
func (s *Service) Outcomes(ctx context.Context, parameters ...*dao.Parameter) ([]*operation.Info, error) {
	ret, err := s.journal.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret, nil
}

// dispatch records e in the journal and hands it to the listeners.
func (s *Service) dispatch(e *event.Event[operation.Info]) {
	s.record(e)
	for _, listener := range s.listeners {
		listener(e)
	}
}

func (s *Service) record(e *event.Event[operation.Info]) {
	if e.Context == nil || e.Data.Kind == operation.KindWaiter || e.Data.Name == "" {
		return
	}
	ctx := context.Background()
	var err error
	switch e.Context.Type {
	case event.TypeStarted, event.TypeCompleted:
		info := e.Data
		err = s.journal.Save(ctx, &info)
	case event.TypeRemoved:
		if err = s.journal.Delete(ctx, e.Data.Name); errors.Is(err, dao.ErrNotFound) {
			err = nil
		}
	}
	if err != nil {
		s.logger.Warn("failed to journal operation", "type", e.Context.Type, "name", e.Data.Name, "error", err)
	}
}
