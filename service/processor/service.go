package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/internal/logging"
	"github.com/viant/teller/model"
	"github.com/viant/teller/progress"
	"github.com/viant/teller/service/executor"
	"github.com/viant/teller/service/notification"
	"github.com/viant/teller/tracing"
	"go.uber.org/zap"
)

// ErrTerminated is recorded on records forced to Failed by Terminate.
var ErrTerminated = errors.New("processor: terminated")

// Registry is the transaction record store used by the processor.
type Registry interface {
	Create(ctx context.Context, customerID int, operation model.Operation, amount int) (*model.Transaction, error)
	Load(ctx context.Context, id int) (*model.Transaction, error)
	Update(ctx context.Context, id int, fn func(t *model.Transaction)) (*model.Transaction, error)
}

// Notifier publishes completion messages to a named endpoint.
type Notifier interface {
	Publish(ctx context.Context, name string, message *model.Message) error
}

// Config represents processor configuration
type Config struct {
	// Endpoint is the notification endpoint workers publish to
	Endpoint string
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{Endpoint: notification.AsyncQueue}
}

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Service runs transaction workers
type Service struct {
	config   Config
	registry Registry
	executor executor.Service
	notifier Notifier
	progress *progress.Progress
	logger   *zap.Logger

	handles  map[int]*handle
	mux      sync.Mutex
	workerWg sync.WaitGroup
}

// New creates a processor
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:  DefaultConfig(),
		logger:  zap.NewNop(),
		handles: make(map[int]*handle),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if s.progress == nil {
		s.progress = progress.New()
	}
	return s, nil
}

// Submit records a running transaction and starts its worker. The worker
// outlives ctx; only Terminate or Shutdown cancel it.
func (s *Service) Submit(ctx context.Context, customerID int, operation model.Operation, amount int) (id int, err error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Submit", "PRODUCER")
	defer func() { tracing.EndSpan(span, err) }()

	record, err := s.registry.Create(ctx, customerID, operation, amount)
	if err != nil {
		return 0, err
	}
	span.WithAttributes(tracing.TransactionAttributes(record.ID, customerID, string(operation)))

	workerCtx, cancel := context.WithCancel(tracing.Link(ctx))
	h := &handle{cancel: cancel, done: make(chan struct{})}
	s.mux.Lock()
	s.handles[record.ID] = h
	s.mux.Unlock()

	s.progress.Update(progress.Delta{Total: 1, Running: 1})
	s.workerWg.Add(1)
	go s.run(workerCtx, record, h)
	return record.ID, nil
}

// run executes the record once.
func (s *Service) run(ctx context.Context, record *model.Transaction, h *handle) {
	defer s.workerWg.Done()
	defer close(h.done)
	defer h.cancel()

	ctx, span := tracing.StartSpan(ctx, "processor.worker", "CONSUMER")
	span.WithAttributes(tracing.TransactionAttributes(record.ID, record.CustomerID, string(record.Operation)))
	logger := logging.WithContext(ctx, s.logger).With(zap.Int("transactionId", record.ID))

	execErr := s.executor.Execute(ctx, record)
	settled, err := s.registry.Update(ctx, record.ID, func(t *model.Transaction) {
		if execErr != nil {
			t.Fail(execErr)
			return
		}
		t.Complete()
	})
	defer func() { tracing.EndSpan(span, execErr) }()
	if err != nil {
		logger.Error("failed to settle transaction", zap.Error(err))
		return
	}

	delta := progress.Delta{Running: -1}
	if settled.Status == model.StatusCompleted {
		delta.Completed = 1
	} else {
		delta.Failed = 1
		logger.Info("transaction failed", zap.Error(execErr))
	}

	if ctx.Err() != nil {
		// terminated after the outcome was decided: the outcome stands, the report is lost
		delta.Dropped = 1
		s.progress.Update(delta)
		logger.Warn("notification dropped: transaction terminated", zap.String("status", settled.Status.String()))
		return
	}

	message := &model.Message{
		TransactionID: settled.ID,
		CustomerID:    settled.CustomerID,
		Status:        settled.Status,
		CreatedAt:     clock.Now(),
	}
	if err = s.notifier.Publish(ctx, s.config.Endpoint, message); err != nil {
		delta.Dropped = 1
		logger.Warn("notification dropped", zap.String("endpoint", s.config.Endpoint), zap.Error(err))
	}
	s.progress.Update(delta)
}

// Terminate cancels a running transaction, waits for its worker and forces
// the record to Failed unless the worker already settled it.
func (s *Service) Terminate(ctx context.Context, id int) (err error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Terminate", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithInt("transaction.id", id)

	record, err := s.registry.Load(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != model.StatusRunning {
		return nil
	}
	if h := s.handle(id); h != nil {
		h.cancel()
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	_, err = s.registry.Update(ctx, id, func(t *model.Transaction) {
		if !t.Settled {
			t.Fail(ErrTerminated)
		}
	})
	return err
}

// Wait blocks until the worker of transaction id has exited.
func (s *Service) Wait(ctx context.Context, id int) error {
	h := s.handle(id)
	if h == nil {
		if _, err := s.registry.Load(ctx, id); err != nil {
			return err
		}
		return nil
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Progress returns a counters snapshot.
func (s *Service) Progress() progress.Snapshot {
	return s.progress.Snapshot()
}

// Shutdown cancels every worker and waits for all of them to exit.
func (s *Service) Shutdown() {
	s.mux.Lock()
	for _, h := range s.handles {
		h.cancel()
	}
	s.mux.Unlock()
	s.workerWg.Wait()
}

func (s *Service) handle(id int) *handle {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.handles[id]
}
