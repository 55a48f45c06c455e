package accountant

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/teller/model"
	"github.com/viant/teller/service/dao"
	"github.com/viant/teller/tracing"
	"go.uber.org/zap"
)

// Registry is the subset of the transaction registry the accountant needs.
type Registry interface {
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Transaction, error)
	Update(ctx context.Context, id int, fn func(t *model.Transaction)) (*model.Transaction, error)
}

// Joiner waits for a transaction worker to exit.
type Joiner interface {
	Wait(ctx context.Context, id int) error
}

// Report summarises a single Run.
type Report struct {
	Visits      int `json:"visits"`
	Completed   int `json:"completed"`
	CurrentTime int `json:"currentTime"`
}

// Option customises the accountant.
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service is the round-robin accountant. currentTime survives across runs.
type Service struct {
	registry    Registry
	joiner      Joiner
	logger      *zap.Logger
	currentTime int
	mux         sync.Mutex
}

// Run passes over the registry until no record needs accounting time.
// Every record that has not failed is accounted, including ones a worker
// already completed, so the schedule covers all successful transactions.
func (s *Service) Run(ctx context.Context) (report *Report, err error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	ctx, span := tracing.StartSpan(ctx, "accountant.Run", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	report = &Report{}
	for {
		records, err := s.registry.List(ctx)
		if err != nil {
			return report, err
		}
		visited := 0
		for _, record := range records {
			if !pending(record) {
				continue
			}
			if err = ctx.Err(); err != nil {
				return report, err
			}
			if err = s.visit(ctx, record, report); err != nil {
				return report, err
			}
			visited++
		}
		if visited == 0 {
			break
		}
	}
	report.CurrentTime = s.currentTime
	span.WithInt("accountant.visits", report.Visits).WithInt("accountant.completed", report.Completed)
	return report, nil
}

func (s *Service) visit(ctx context.Context, record *model.Transaction, report *Report) error {
	quantum := record.Quantum
	if quantum <= 0 {
		quantum = 1
	}
	now := s.currentTime
	finishing := record.RemainingTime <= quantum
	if finishing {
		if err := s.joiner.Wait(ctx, record.ID); err != nil {
			return fmt.Errorf("failed to join transaction %d: %w", record.ID, err)
		}
	}
	updated, err := s.registry.Update(ctx, record.ID, func(t *model.Transaction) {
		if !t.Visited {
			t.Visited = true
			t.StartTime = now
		}
		if !finishing {
			t.RemainingTime -= quantum
			return
		}
		t.RemainingTime = 0
		t.EndTime = now + quantum
		if !t.Settled {
			t.Complete()
		}
	})
	if err != nil {
		return err
	}
	s.currentTime += quantum
	report.Visits++
	if finishing {
		report.Completed++
		s.logger.Debug("transaction accounted",
			zap.Int("transactionId", updated.ID),
			zap.String("status", updated.Status.String()),
			zap.Int("startTime", updated.StartTime),
			zap.Int("endTime", updated.EndTime))
	}
	return nil
}

// pending reports whether a record still needs accounting time. Records a
// worker completed are still accounted; failed ones are not.
func pending(record *model.Transaction) bool {
	return record.Status != model.StatusFailed && record.RemainingTime > 0
}

// CurrentTime returns the accounting clock.
func (s *Service) CurrentTime() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.currentTime
}

// Metrics derives the accounting figures from completed records. A zero
// denominator yields 0 for the affected figure.
func (s *Service) Metrics(ctx context.Context) (*model.Metrics, error) {
	records, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	currentTime := s.CurrentTime()
	ret := &model.Metrics{CurrentTime: currentTime, Transactions: len(records)}
	waiting, busy := 0, 0
	for _, record := range records {
		if record.Status != model.StatusCompleted {
			continue
		}
		ret.Completed++
		waiting += record.StartTime - record.EndTime
		busy += record.EndTime - record.StartTime
	}
	if len(records) > 0 {
		ret.AverageWaitingTime = float64(waiting) / float64(len(records))
	}
	if currentTime > 0 {
		ret.CPUUtilization = float64(busy) / float64(currentTime)
	}
	return ret, nil
}

// Schedule returns the accounted interval of every completed record.
func (s *Service) Schedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	records, err := s.registry.List(ctx, dao.NewParameter("Status", model.StatusCompleted.String()))
	if err != nil {
		return nil, err
	}
	ret := make([]model.ScheduleEntry, 0, len(records))
	for _, record := range records {
		ret = append(ret, model.ScheduleEntry{
			TransactionID: record.ID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
		})
	}
	return ret, nil
}

// New creates an accountant over the registry.
func New(registry Registry, joiner Joiner, opts ...Option) *Service {
	s := &Service{registry: registry, joiner: joiner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
