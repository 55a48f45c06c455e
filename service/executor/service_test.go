package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/allocator"
	"github.com/viant/teller/service/ledger"
)

func newLedger(t *testing.T) *ledger.Service {
	logical := &clock.Logical{}
	l := ledger.New(logical, allocator.New(logical, allocator.DefaultConfig()), ledger.Config{MaxAccounts: 10})
	require.NoError(t, l.CreateAccount(1, 50))
	return l
}

func TestService_Execute(t *testing.T) {
	testCases := []struct {
		name          string
		record        model.Transaction
		cancelled     bool
		expectErr     error
		expectBalance int
		expectCalls   int
	}{
		{name: "deposit", record: model.Transaction{CustomerID: 1, Operation: model.OperationDeposit, Amount: 20}, expectBalance: 70, expectCalls: 1},
		{name: "withdraw", record: model.Transaction{CustomerID: 1, Operation: model.OperationWithdraw, Amount: 20}, expectBalance: 30, expectCalls: 1},
		{name: "withdraw pre-check", record: model.Transaction{CustomerID: 1, Operation: model.OperationWithdraw, Amount: 100}, expectErr: ErrInsufficientFunds, expectBalance: 50},
		{name: "withdraw unknown account", record: model.Transaction{CustomerID: 2, Operation: model.OperationWithdraw, Amount: 1}, expectErr: ErrInsufficientFunds, expectBalance: 50},
		{name: "withdraw zero skips pre-check", record: model.Transaction{CustomerID: 2, Operation: model.OperationWithdraw, Amount: 0}, expectErr: ledger.ErrNotFound, expectBalance: 50, expectCalls: 1},
		{name: "negative deposit", record: model.Transaction{CustomerID: 1, Operation: model.OperationDeposit, Amount: -5}, expectErr: ledger.ErrInvalidAmount, expectBalance: 50, expectCalls: 1},
		{name: "customer out of range", record: model.Transaction{CustomerID: 10, Operation: model.OperationDeposit, Amount: 1}, expectErr: ErrInvalidCustomer, expectBalance: 50},
		{name: "negative customer", record: model.Transaction{CustomerID: -1, Operation: model.OperationDeposit, Amount: 1}, expectErr: ErrInvalidCustomer, expectBalance: 50},
		{name: "unknown operation", record: model.Transaction{CustomerID: 1, Operation: "transfer", Amount: 1}, expectErr: ErrUnknownOperation, expectBalance: 50},
		{name: "cancelled", record: model.Transaction{CustomerID: 1, Operation: model.OperationDeposit, Amount: 1}, cancelled: true, expectErr: ErrCancelled, expectBalance: 50},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newLedger(t)
			calls := 0
			s := NewService(l, WithListener(func(record *model.Transaction, err error) { calls++ }))
			ctx, cancel := context.WithCancel(context.Background())
			if tc.cancelled {
				cancel()
			} else {
				defer cancel()
			}
			record := tc.record
			err := s.Execute(ctx, &record)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}
			balance, err := l.BalanceOf(1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectBalance, balance)
			assert.Equal(t, tc.expectCalls, calls)
		})
	}
}
