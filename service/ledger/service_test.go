package ledger

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/service/allocator"
)

func newLedger(pages, maxAccounts int) (*Service, *allocator.Service) {
	logical := &clock.Logical{}
	pool := allocator.New(logical, allocator.Config{Pages: pages, PageSize: 16})
	return New(logical, pool, Config{MaxAccounts: maxAccounts}), pool
}

func TestService_CreateAccount(t *testing.T) {
	testCases := []struct {
		name      string
		pages     int
		max       int
		setup     [][2]int
		customer  int
		balance   int
		expectErr error
	}{
		{name: "ok", pages: 2, max: 10, customer: 1, balance: 50},
		{name: "duplicate", pages: 2, max: 10, setup: [][2]int{{1, 10}}, customer: 1, balance: 5, expectErr: ErrDuplicateID},
		{name: "capacity", pages: 4, max: 1, setup: [][2]int{{1, 10}}, customer: 2, balance: 5, expectErr: ErrCapacityExceeded},
		{name: "no storage", pages: 0, max: 10, customer: 1, balance: 5, expectErr: ErrNoStorage},
		{name: "negative balance", pages: 2, max: 10, customer: 1, balance: -1, expectErr: ErrInvalidAmount},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newLedger(tc.pages, tc.max)
			for _, acc := range tc.setup {
				require.NoError(t, s.CreateAccount(acc[0], acc[1]))
			}
			err := s.CreateAccount(tc.customer, tc.balance)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			balance, err := s.BalanceOf(tc.customer)
			require.NoError(t, err)
			assert.Equal(t, tc.balance, balance)
			assert.True(t, s.Resident(tc.customer))
		})
	}
}

func TestService_DuplicateDoesNotConsumePage(t *testing.T) {
	s, pool := newLedger(3, 10)
	require.NoError(t, s.CreateAccount(1, 10))
	assert.ErrorIs(t, s.CreateAccount(1, 20), ErrDuplicateID)

	used := 0
	for _, p := range pool.Pages() {
		if p.Used {
			used++
		}
	}
	assert.Equal(t, 1, used)
	balance, _ := s.BalanceOf(1)
	assert.Equal(t, 10, balance)
}

func TestService_DepositWithdraw(t *testing.T) {
	s, _ := newLedger(4, 10)
	require.NoError(t, s.CreateAccount(7, 100))

	assert.NoError(t, s.Deposit(7, 50))
	assert.NoError(t, s.Deposit(7, 0))
	assert.NoError(t, s.Withdraw(7, 30))
	balance, err := s.BalanceOf(7)
	require.NoError(t, err)
	assert.Equal(t, 120, balance)

	assert.ErrorIs(t, s.Deposit(7, -5), ErrInvalidAmount)
	assert.ErrorIs(t, s.Withdraw(7, -1), ErrInvalidAmount)
	assert.ErrorIs(t, s.Withdraw(7, 121), ErrInsufficientFunds)
	assert.ErrorIs(t, s.Deposit(8, 1), ErrNotFound)
	assert.ErrorIs(t, s.Withdraw(8, 1), ErrNotFound)

	balance, _ = s.BalanceOf(7)
	assert.Equal(t, 120, balance)
}

func TestService_DepositOverflow(t *testing.T) {
	testCases := []struct {
		name          string
		initial       int
		amount        int
		expectErr     error
		expectBalance int
	}{
		{name: "max int onto positive balance", initial: 10, amount: math.MaxInt, expectErr: ErrOverflow, expectBalance: 10},
		{name: "one past max", initial: math.MaxInt - 5, amount: 6, expectErr: ErrOverflow, expectBalance: math.MaxInt - 5},
		{name: "exactly max", initial: math.MaxInt - 5, amount: 5, expectBalance: math.MaxInt},
		{name: "max int onto zero", initial: 0, amount: math.MaxInt, expectBalance: math.MaxInt},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newLedger(2, 10)
			require.NoError(t, s.CreateAccount(1, tc.initial))
			err := s.Deposit(1, tc.amount)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}
			balance, err := s.BalanceOf(1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectBalance, balance)
			assert.GreaterOrEqual(t, balance, 0)
		})
	}
}

func TestService_InvalidAmountBeforeLookup(t *testing.T) {
	s, _ := newLedger(2, 10)
	assert.ErrorIs(t, s.Deposit(7, -5), ErrInvalidAmount)
	require.NoError(t, s.CreateAccount(7, 40))
	assert.ErrorIs(t, s.Deposit(7, -5), ErrInvalidAmount)
	balance, _ := s.BalanceOf(7)
	assert.Equal(t, 40, balance)
}

func TestService_BalanceOf(t *testing.T) {
	s, _ := newLedger(2, 10)
	_, err := s.BalanceOf(-1)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = s.BalanceOf(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SequenceInvariant(t *testing.T) {
	s, _ := newLedger(2, 10)
	require.NoError(t, s.CreateAccount(1, 25))
	expected := 25
	ops := []struct {
		deposit bool
		amount  int
	}{
		{true, 10}, {false, 40}, {false, 30}, {true, 5}, {false, 100}, {false, 10}, {true, 0},
	}
	for _, op := range ops {
		var err error
		if op.deposit {
			err = s.Deposit(1, op.amount)
			if err == nil {
				expected += op.amount
			}
		} else {
			err = s.Withdraw(1, op.amount)
			if err == nil {
				expected -= op.amount
			}
		}
		balance, _ := s.BalanceOf(1)
		assert.GreaterOrEqual(t, balance, 0)
	}
	balance, _ := s.BalanceOf(1)
	assert.Equal(t, expected, balance)
	assert.Equal(t, 0, balance)
}

func TestService_ConcurrentDeposits(t *testing.T) {
	s, _ := newLedger(2, 10)
	require.NoError(t, s.CreateAccount(1, 0))

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 1; i <= workers; i++ {
		go func(amount int) {
			defer wg.Done()
			assert.NoError(t, s.Deposit(1, amount))
		}(i)
	}
	wg.Wait()

	balance, _ := s.BalanceOf(1)
	assert.Equal(t, workers*(workers+1)/2, balance)
}

// Two pages, three accounts: the third account takes the page of the
// least recently touched account, which is no longer resident.
func TestService_ReclaimHazard(t *testing.T) {
	s, pool := newLedger(2, 10)
	require.NoError(t, s.CreateAccount(1, 100))
	require.NoError(t, s.CreateAccount(2, 200))
	require.NoError(t, s.CreateAccount(3, 300))

	assert.False(t, s.Resident(1))
	assert.True(t, s.Resident(2))
	assert.True(t, s.Resident(3))

	data, err := pool.Read(0)
	require.NoError(t, err)
	stored, ok := decode(data)
	require.True(t, ok)
	assert.Equal(t, 3, stored.CustomerID)
	assert.Equal(t, 300, stored.Balance)

	// customer 1 still answers from the compacted array, and writing its
	// balance through clobbers customer 3's page
	require.NoError(t, s.Deposit(1, 1))
	data, _ = pool.Read(0)
	stored, _ = decode(data)
	assert.Equal(t, 1, stored.CustomerID)
	assert.False(t, s.Resident(3))
	assert.Len(t, s.Accounts(), 3)
}

func TestCodec(t *testing.T) {
	_, ok := decode([]byte{1, 2})
	assert.False(t, ok)
}
