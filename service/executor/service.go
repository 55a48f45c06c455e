package executor

import (
	"context"
	"fmt"

	"github.com/viant/teller/model"
	"go.uber.org/zap"
)

// Ledger is the subset of the account ledger the executor needs.
type Ledger interface {
	Deposit(customerID, amount int) error
	Withdraw(customerID, amount int) error
	BalanceOf(customerID int) (int, error)
	MaxAccounts() int
}

// Listener is invoked once the ledger call returns (regardless of whether it
// returned an error or not). It is not called when validation or the
// pre-check rejected the record.
type Listener func(record *model.Transaction, err error)

// LogListener returns a listener that logs every ledger call at debug level.
func LogListener(logger *zap.Logger) Listener {
	return func(record *model.Transaction, err error) {
		if record == nil {
			return
		}
		logger.Debug("ledger call",
			zap.Int("transactionId", record.ID),
			zap.Int("customerId", record.CustomerID),
			zap.String("operation", string(record.Operation)),
			zap.Int("amount", record.Amount),
			zap.Error(err))
	}
}

// Option is used to customise the executor instance.
type Option func(*service)

// WithListener overrides the listener invoked after every ledger call.
// Passing nil disables the callback entirely.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Service represents a transaction executor.
type Service interface {
	Execute(ctx context.Context, record *model.Transaction) error
}

type service struct {
	ledger   Ledger
	listener Listener
}

// Execute validates the record and invokes the bound ledger operation.
// ctx is the record's cancellation token; it is checked once, right before
// the ledger call, because the call itself cannot be interrupted.
func (s *service) Execute(ctx context.Context, record *model.Transaction) error {
	if record.CustomerID < 0 || record.CustomerID >= s.ledger.MaxAccounts() {
		return fmt.Errorf("%w: %d", ErrInvalidCustomer, record.CustomerID)
	}
	var call func(customerID, amount int) error
	switch record.Operation {
	case model.OperationDeposit:
		call = s.ledger.Deposit
	case model.OperationWithdraw:
		call = s.ledger.Withdraw
		if record.Amount > 0 {
			balance, err := s.ledger.BalanceOf(record.CustomerID)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
			}
			if balance < record.Amount {
				return fmt.Errorf("%w: balance %d < %d", ErrInsufficientFunds, balance, record.Amount)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, record.Operation)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	err := call(record.CustomerID, record.Amount)
	if s.listener != nil {
		s.listener(record, err)
	}
	return err
}

// NewService creates a new executor over the ledger.
func NewService(ledger Ledger, opts ...Option) Service {
	s := &service{ledger: ledger}
	for _, o := range opts {
		o(s)
	}
	return s
}
