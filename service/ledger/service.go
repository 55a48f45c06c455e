package ledger

import (
	"fmt"
	"math"
	"sync"

	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/allocator"
	"go.uber.org/zap"
)

// Config represents ledger configuration
type Config struct {
	// MaxAccounts bounds the account table; valid customer ids are [0, MaxAccounts)
	MaxAccounts int
}

// DefaultConfig returns the default ledger configuration
func DefaultConfig() Config {
	return Config{MaxAccounts: 100}
}

type entry struct {
	account model.Account
	ref     allocator.Ref
}

// Service is the account ledger.
type Service struct {
	config    Config
	clock     *clock.Logical
	allocator *allocator.Service
	logger    *zap.Logger
	accounts  []entry
	mux       sync.Mutex
}

// Option customises the ledger.
type Option func(*Service)

// WithLogger sets the ledger logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// CreateAccount opens an account backed by a freshly allocated page.
func (s *Service) CreateAccount(customerID, initialBalance int) error {
	if initialBalance < 0 {
		return ErrInvalidAmount
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if len(s.accounts) >= s.config.MaxAccounts {
		return ErrCapacityExceeded
	}
	if s.lookup(customerID) != -1 {
		return ErrDuplicateID
	}
	s.clock.Tick()
	page, err := s.allocator.Allocate()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoStorage, err)
	}
	if page.Reclaimed {
		s.logger.Warn("account storage reclaimed from another account",
			zap.Int("customerId", customerID), zap.Int("page", int(page.Ref)))
	}
	account := model.Account{CustomerID: customerID, Balance: initialBalance}
	if err = s.allocator.Write(page.Ref, encode(account)); err != nil {
		return fmt.Errorf("%w: %v", ErrNoStorage, err)
	}
	s.accounts = append(s.accounts, entry{account: account, ref: page.Ref})
	_ = s.allocator.Touch(page.Ref)
	return nil
}

// Deposit adds amount to the account balance.
func (s *Service) Deposit(customerID, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.lookup(customerID)
	if idx == -1 {
		return ErrNotFound
	}
	if amount > math.MaxInt-s.accounts[idx].account.Balance {
		return ErrOverflow
	}
	s.accounts[idx].account.Balance += amount
	s.sync(idx)
	return nil
}

// Withdraw subtracts amount from the account balance.
func (s *Service) Withdraw(customerID, amount int) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.lookup(customerID)
	if idx == -1 {
		return ErrNotFound
	}
	if s.accounts[idx].account.Balance < amount {
		return ErrInsufficientFunds
	}
	s.accounts[idx].account.Balance -= amount
	s.sync(idx)
	return nil
}

// BalanceOf returns the account balance.
func (s *Service) BalanceOf(customerID int) (int, error) {
	if customerID < 0 {
		return 0, ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.lookup(customerID)
	if idx == -1 {
		return 0, ErrNotFound
	}
	s.clock.Tick()
	_ = s.allocator.Touch(s.accounts[idx].ref)
	return s.accounts[idx].account.Balance, nil
}

// Accounts returns a snapshot of the compacted account array.
func (s *Service) Accounts() []model.Account {
	s.mux.Lock()
	defer s.mux.Unlock()
	ret := make([]model.Account, len(s.accounts))
	for i, e := range s.accounts {
		ret[i] = e.account
	}
	return ret
}

// Resident reports whether the account's page still holds the account.
func (s *Service) Resident(customerID int) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	idx := s.lookup(customerID)
	if idx == -1 {
		return false
	}
	data, err := s.allocator.Read(s.accounts[idx].ref)
	if err != nil {
		return false
	}
	stored, ok := decode(data)
	return ok && stored.CustomerID == customerID
}

// MaxAccounts returns the account table capacity.
func (s *Service) MaxAccounts() int {
	return s.config.MaxAccounts
}

// lookup returns the compacted array index of customerID or -1; caller holds mux.
func (s *Service) lookup(customerID int) int {
	for i := range s.accounts {
		if s.accounts[i].account.CustomerID == customerID {
			return i
		}
	}
	return -1
}

// sync writes the account through to its page and restamps it; caller holds mux.
func (s *Service) sync(idx int) {
	e := s.accounts[idx]
	s.clock.Tick()
	if err := s.allocator.Write(e.ref, encode(e.account)); err != nil {
		s.logger.Error("failed to write account page", zap.Int("customerId", e.account.CustomerID), zap.Error(err))
	}
	_ = s.allocator.Touch(e.ref)
}

// New creates a ledger over the supplied allocator and logical clock.
func New(logical *clock.Logical, pages *allocator.Service, config Config, opts ...Option) *Service {
	s := &Service{
		config:    config,
		clock:     logical,
		allocator: pages,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
