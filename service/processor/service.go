package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/oploader/internal/idgen"
	"github.com/viant/oploader/model/operation"
	"github.com/viant/oploader/service/messaging"
	"github.com/viant/oploader/service/messaging/memory"
)

// Func is blocking operation work. A nil error reports success.
type Func func(ctx context.Context, statuses []operation.Status) error

// Job is one activation handed to the workers.
type Job struct {
	ID       string
	Name     string
	Statuses []operation.Status
	Run      Func
	Done     operation.Done
}

// Config represents processor configuration
type Config struct {
	// Workers is the number of goroutines running jobs
	Workers int `json:"workers" yaml:"workers"`

	// MaxRetries is how many times a failed job is re-run before reporting failure
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`

	// RetryDelay is the delay between attempts
	RetryDelay time.Duration `json:"retryDelay" yaml:"retryDelay"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		Workers:    4,
		MaxRetries: 0,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Validate reports invalid settings.
func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("processor.workers must be positive, got %d", c.Workers))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("processor.maxRetries must not be negative, got %d", c.MaxRetries))
	}
	if c.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("processor.retryDelay must not be negative, got %s", c.RetryDelay))
	}
	return errors.Join(errs...)
}

// Service runs jobs on a pool of workers
type Service struct {
	config Config
	queue  messaging.Queue[Job]
	logger *slog.Logger

	mux      sync.Mutex
	started  bool
	cancelFn context.CancelFunc
	workerWg sync.WaitGroup
}

// New creates a processor. When no queue is supplied an in-memory queue
// honouring MaxRetries and RetryDelay is used.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "processor")
	if s.queue == nil {
		s.queue = memory.NewQueue[Job](memory.Config{
			MaxRetries: s.config.MaxRetries,
			RetryDelay: s.config.RetryDelay,
		})
	}
	return s, nil
}

// Start launches the workers; they stop when ctx is done or on Shutdown.
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.started {
		return fmt.Errorf("processor already started")
	}
	s.started = true
	ctx, s.cancelFn = context.WithCancel(ctx)
	for i := 0; i < s.config.Workers; i++ {
		s.workerWg.Add(1)
		go s.run(ctx, i)
	}
	s.logger.Debug("processor started", "workers", s.config.Workers)
	return nil
}

// Submit enqueues a job.
func (s *Service) Submit(ctx context.Context, job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %q has no work", job.Name)
	}
	if job.ID == "" {
		job.ID = idgen.New()
	}
	if err := s.queue.Publish(ctx, &job); err != nil {
		return fmt.Errorf("failed to submit job %q: %w", job.Name, err)
	}
	return nil
}

func (s *Service) run(ctx context.Context, id int) {
	defer s.workerWg.Done()
	for {
		msg, err := s.queue.Consume(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, messaging.ErrClosed) {
				return
			}
			s.logger.Warn("failed to consume job", "worker", id, "error", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		s.process(ctx, msg)
	}
}

func (s *Service) process(ctx context.Context, msg messaging.Message[Job]) {
	job := msg.T()
	err := execute(ctx, job)
	if err == nil {
		_ = msg.Ack()
		report(job, true)
		return
	}
	nackErr := msg.Nack(err)
	if nackErr == nil {
		s.logger.Debug("job failed, retrying", "operation", job.Name, "error", err)
		return
	}
	if !errors.Is(nackErr, messaging.ErrRetriesExhausted) {
		s.logger.Warn("failed to nack job", "operation", job.Name, "error", nackErr)
	}
	s.logger.Warn("job failed", "operation", job.Name, "error", err)
	report(job, false)
}

func execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation %q panicked: %v", job.Name, r)
		}
	}()
	return job.Run(ctx, job.Statuses)
}

func report(job *Job, success bool) {
	if job.Done != nil {
		job.Done(success)
	}
}

// Shutdown stops the workers and waits for in-flight jobs to return.
func (s *Service) Shutdown() {
	s.mux.Lock()
	cancel := s.cancelFn
	s.mux.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.workerWg.Wait()
}
