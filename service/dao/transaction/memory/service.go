package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/dao"
	"github.com/viant/teller/service/dao/criteria"
)

// Config represents registry configuration
type Config struct {
	// MaxTransactions bounds the number of records the registry can hold
	MaxTransactions int
	// Quantum is the accounting slice recorded on new records
	Quantum int
	// Burst is the accounting time a new record needs before it completes
	Burst int
}

// DefaultConfig returns the default registry configuration
func DefaultConfig() Config {
	return Config{MaxTransactions: 100, Quantum: 1, Burst: 1}
}

// Service implements the in-memory transaction registry.  All operations are
// thread-safe and return **copies** of the underlying records to prevent data
// races when callers mutate the returned instances.
type Service struct {
	config  Config
	records []*model.Transaction
	mux     sync.RWMutex
}

// Compile-time check that Service implements the generic DAO interface.
var _ dao.Service[int, model.Transaction] = (*Service)(nil)

// Create allocates the next record: 1-based id, running, with the configured
// quantum and burst as remaining time.
func (s *Service) Create(_ context.Context, customerID int, operation model.Operation, amount int) (*model.Transaction, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if len(s.records) >= s.config.MaxTransactions {
		return nil, dao.ErrCapacityExceeded
	}
	record := &model.Transaction{
		ID:            len(s.records) + 1,
		CustomerID:    customerID,
		Status:        model.StatusRunning,
		Operation:     operation,
		Amount:        amount,
		Quantum:       s.config.Quantum,
		RemainingTime: s.config.Burst,
		SubmittedAt:   clock.Now(),
	}
	s.records = append(s.records, record)
	return record.Clone(), nil
}

// Save overwrites (a clone of) an existing record.
func (s *Service) Save(_ context.Context, t *model.Transaction) error {
	if t == nil {
		return dao.ErrNilEntity
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	idx, err := s.index(t.ID)
	if err != nil {
		return err
	}
	s.records[idx] = t.Clone()
	return nil
}

// Load retrieves a copy of the record or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id int) (*model.Transaction, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	idx, err := s.index(id)
	if err != nil {
		return nil, err
	}
	return s.records[idx].Clone(), nil
}

// Update applies fn to the stored record under the registry lock and returns
// a copy of the result.
func (s *Service) Update(_ context.Context, id int, fn func(t *model.Transaction)) (*model.Transaction, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	idx, err := s.index(id)
	if err != nil {
		return nil, err
	}
	fn(s.records[idx])
	return s.records[idx].Clone(), nil
}

// List returns copies of the records in id order, filtered by Status
// parameters when supplied.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*model.Transaction, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*model.Transaction, 0, len(s.records))
	for _, record := range s.records {
		if !criteria.FilterByStatus(record.Status.String(), parameters) {
			continue
		}
		out = append(out, record.Clone())
	}
	return out, nil
}

// Count returns the number of records.
func (s *Service) Count() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.records)
}

func (s *Service) index(id int) (int, error) {
	if id <= 0 || id > len(s.records) {
		return 0, fmt.Errorf("%w: transaction %d", dao.ErrNotFound, id)
	}
	return id - 1, nil
}

// New constructor.
func New(config Config) *Service {
	if config.Quantum <= 0 {
		config.Quantum = 1
	}
	if config.Burst <= 0 {
		config.Burst = config.Quantum
	}
	return &Service{config: config}
}
