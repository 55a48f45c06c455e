package accountant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/teller/model"
	"github.com/viant/teller/service/dao/transaction/memory"
)

type joiner struct {
	joined []int
	err    error
}

func (j *joiner) Wait(_ context.Context, id int) error {
	j.joined = append(j.joined, id)
	return j.err
}

func TestService_Run(t *testing.T) {
	testCases := []struct {
		name        string
		burst       int
		settle      map[int]model.Status
		records     int
		expectTime  int
		expectVisit int
		expectSched []model.ScheduleEntry
		expectState map[int]model.Status
	}{
		{
			name:        "single slice",
			burst:       1,
			records:     3,
			expectTime:  3,
			expectVisit: 3,
			expectSched: []model.ScheduleEntry{{1, 0, 1}, {2, 1, 2}, {3, 2, 3}},
			expectState: map[int]model.Status{1: model.StatusCompleted, 2: model.StatusCompleted, 3: model.StatusCompleted},
		},
		{
			name:        "round robin",
			burst:       2,
			records:     2,
			expectTime:  4,
			expectVisit: 4,
			expectSched: []model.ScheduleEntry{{1, 0, 3}, {2, 1, 4}},
			expectState: map[int]model.Status{1: model.StatusCompleted, 2: model.StatusCompleted},
		},
		{
			name:        "failed skipped",
			burst:       1,
			records:     2,
			settle:      map[int]model.Status{1: model.StatusFailed},
			expectTime:  1,
			expectVisit: 1,
			expectSched: []model.ScheduleEntry{{2, 0, 1}},
			expectState: map[int]model.Status{1: model.StatusFailed, 2: model.StatusCompleted},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			registry := memory.New(memory.Config{MaxTransactions: 10, Quantum: 1, Burst: tc.burst})
			for i := 0; i < tc.records; i++ {
				_, err := registry.Create(ctx, i, model.OperationDeposit, 10)
				require.NoError(t, err)
			}
			for id, status := range tc.settle {
				_, err := registry.Update(ctx, id, func(r *model.Transaction) {
					if status == model.StatusFailed {
						r.Fail(errors.New("failed"))
					}
				})
				require.NoError(t, err)
			}

			j := &joiner{}
			srv := New(registry, j)
			report, err := srv.Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.expectVisit, report.Visits)
			assert.Equal(t, tc.expectTime, report.CurrentTime)

			schedule, err := srv.Schedule(ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.expectSched, schedule)
			for id, status := range tc.expectState {
				record, err := registry.Load(ctx, id)
				require.NoError(t, err)
				assert.Equal(t, status, record.Status)
			}

			again, err := srv.Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, again.Visits)
			assert.Equal(t, tc.expectTime, again.CurrentTime)
		})
	}
}

func TestService_Run_KeepsWorkerOutcome(t *testing.T) {
	ctx := context.Background()
	registry := memory.New(memory.DefaultConfig())
	record, err := registry.Create(ctx, 1, model.OperationWithdraw, 10)
	require.NoError(t, err)

	j := &joiner{}
	srv := New(registry, j)
	_, err = srv.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{record.ID}, j.joined)

	loaded, err := registry.Load(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, loaded.Status)
	assert.Equal(t, 0, loaded.RemainingTime)
}

func TestService_Run_JoinError(t *testing.T) {
	ctx := context.Background()
	registry := memory.New(memory.DefaultConfig())
	_, err := registry.Create(ctx, 1, model.OperationDeposit, 10)
	require.NoError(t, err)

	srv := New(registry, &joiner{err: context.Canceled})
	_, err = srv.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Metrics(t *testing.T) {
	t.Run("zero duration", func(t *testing.T) {
		srv := New(memory.New(memory.DefaultConfig()), &joiner{})
		metrics, err := srv.Metrics(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0.0, metrics.AverageWaitingTime)
		assert.Equal(t, 0.0, metrics.CPUUtilization)
		assert.Equal(t, 0, metrics.CurrentTime)
	})

	t.Run("accounted", func(t *testing.T) {
		ctx := context.Background()
		registry := memory.New(memory.Config{MaxTransactions: 10, Quantum: 1, Burst: 2})
		for i := 0; i < 2; i++ {
			_, err := registry.Create(ctx, i, model.OperationDeposit, 1)
			require.NoError(t, err)
		}
		srv := New(registry, &joiner{})
		_, err := srv.Run(ctx)
		require.NoError(t, err)

		metrics, err := srv.Metrics(ctx)
		require.NoError(t, err)
		// intervals [0,3) and [1,4)
		assert.Equal(t, -3.0, metrics.AverageWaitingTime)
		assert.Equal(t, 1.5, metrics.CPUUtilization)
		assert.Equal(t, 2, metrics.Completed)
		assert.Equal(t, 2, metrics.Transactions)
	})
}
