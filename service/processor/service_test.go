package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/teller/internal/clock"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/allocator"
	"github.com/viant/teller/service/dao"
	"github.com/viant/teller/service/dao/transaction/memory"
	"github.com/viant/teller/service/executor"
	"github.com/viant/teller/service/ledger"
	queue "github.com/viant/teller/service/messaging/memory"
	"github.com/viant/teller/service/notification"
)

type fixture struct {
	ledger   *ledger.Service
	registry *memory.Service
	notifier *notification.Service
	service  *Service
}

func newFixture(t *testing.T, exec func(*ledger.Service) executor.Service) *fixture {
	t.Helper()
	logical := &clock.Logical{}
	pool := allocator.New(logical, allocator.Config{Pages: 10, PageSize: 16})
	accounts := ledger.New(logical, pool, ledger.Config{MaxAccounts: 10})
	registry := memory.New(memory.DefaultConfig())
	config := queue.DefaultConfig()
	config.QueueBuffer = 32
	notifier, err := notification.New(config)
	require.NoError(t, err)
	if exec == nil {
		exec = func(l *ledger.Service) executor.Service { return executor.NewService(l) }
	}
	srv, err := New(
		WithRegistry(registry),
		WithExecutor(exec(accounts)),
		WithNotifier(notifier),
	)
	require.NoError(t, err)
	t.Cleanup(srv.Shutdown)
	return &fixture{ledger: accounts, registry: registry, notifier: notifier, service: srv}
}

// gatedExecutor holds every record until released or cancelled.
type gatedExecutor struct {
	inner   executor.Service
	started chan int
	release chan struct{}
}

func (g *gatedExecutor) Execute(ctx context.Context, record *model.Transaction) error {
	g.started <- record.ID
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return g.inner.Execute(ctx, record)
}

func TestNew(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestService_Submit(t *testing.T) {
	testCases := []struct {
		name      string
		initial   int
		operation model.Operation
		amount    int
		status    model.Status
		balance   int
	}{
		{name: "deposit", initial: 50, operation: model.OperationDeposit, amount: 25, status: model.StatusCompleted, balance: 75},
		{name: "withdraw", initial: 50, operation: model.OperationWithdraw, amount: 20, status: model.StatusCompleted, balance: 30},
		{name: "insufficient funds", initial: 50, operation: model.OperationWithdraw, amount: 100, status: model.StatusFailed, balance: 50},
		{name: "zero withdraw", initial: 50, operation: model.OperationWithdraw, amount: 0, status: model.StatusCompleted, balance: 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			require.NoError(t, f.ledger.CreateAccount(1, tc.initial))
			ctx := context.Background()

			id, err := f.service.Submit(ctx, 1, tc.operation, tc.amount)
			require.NoError(t, err)
			assert.Equal(t, 1, id)
			require.NoError(t, f.service.Wait(ctx, id))

			record, err := f.registry.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tc.status, record.Status)
			assert.True(t, record.Settled)

			balance, err := f.ledger.BalanceOf(1)
			require.NoError(t, err)
			assert.Equal(t, tc.balance, balance)

			msg, err := f.notifier.Receive(ctx, notification.AsyncQueue)
			require.NoError(t, err)
			assert.Equal(t, id, msg.TransactionID)
			assert.Equal(t, 1, msg.CustomerID)
			assert.Equal(t, tc.status, msg.Status)
			assert.Equal(t, 0, f.notifier.Size(notification.SyncQueue))
		})
	}
}

func TestService_Submit_Concurrent(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ledger.CreateAccount(3, 0))
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := f.service.Submit(ctx, 3, model.OperationDeposit, 5)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)
	for id := range ids {
		require.NoError(t, f.service.Wait(ctx, id))
	}

	balance, err := f.ledger.BalanceOf(3)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	messages, err := f.notifier.Drain(notification.AsyncQueue)
	require.NoError(t, err)
	assert.Len(t, messages, 20)

	snapshot := f.service.Progress()
	assert.Equal(t, 20, snapshot.TotalTransactions)
	assert.Equal(t, 20, snapshot.CompletedTransactions)
	assert.Equal(t, 0, snapshot.RunningTransactions)
}

func TestService_Terminate(t *testing.T) {
	gate := &gatedExecutor{started: make(chan int, 1), release: make(chan struct{})}
	f := newFixture(t, func(l *ledger.Service) executor.Service {
		gate.inner = executor.NewService(l)
		return gate
	})
	require.NoError(t, f.ledger.CreateAccount(2, 40))
	ctx := context.Background()

	id, err := f.service.Submit(ctx, 2, model.OperationDeposit, 10)
	require.NoError(t, err)
	select {
	case <-gate.started:
	case <-time.After(time.Second):
		t.Fatal("worker did not start")
	}

	require.NoError(t, f.service.Terminate(ctx, id))

	record, err := f.registry.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, record.Status)

	balance, err := f.ledger.BalanceOf(2)
	require.NoError(t, err)
	assert.Equal(t, 40, balance)

	assert.Equal(t, 0, f.notifier.Size(notification.AsyncQueue))
	assert.Equal(t, 1, f.service.Progress().DroppedNotifications)
}

func TestService_Terminate_Settled(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ledger.CreateAccount(4, 10))
	ctx := context.Background()

	id, err := f.service.Submit(ctx, 4, model.OperationDeposit, 5)
	require.NoError(t, err)
	require.NoError(t, f.service.Wait(ctx, id))

	require.NoError(t, f.service.Terminate(ctx, id))
	record, err := f.registry.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, record.Status)

	balance, err := f.ledger.BalanceOf(4)
	require.NoError(t, err)
	assert.Equal(t, 15, balance)
}

func TestService_Terminate_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	err := f.service.Terminate(context.Background(), 42)
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, f.service.Wait(context.Background(), 42), dao.ErrNotFound)
}
