package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/teller/service/messaging"
)

type TestPayload struct {
	ID    int
	Count int
}

func TestQueue(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	payload := TestPayload{ID: 1, Count: 2}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())
	assert.Equal(t, 10, queue.Capacity())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID())
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
}

func TestQueue_FIFO(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, queue.Publish(ctx, &TestPayload{ID: i}))
	}
	for i := 1; i <= 5; i++ {
		msg, ok := queue.TryConsume()
		require.True(t, ok)
		assert.Equal(t, i, msg.T().ID)
	}
	_, ok := queue.TryConsume()
	assert.False(t, ok)
}

func TestQueue_Policy(t *testing.T) {
	testCases := []struct {
		name   string
		policy messaging.Policy
	}{
		{name: "fail", policy: messaging.PolicyFail},
		{name: "block", policy: messaging.PolicyBlock},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			config.QueueBuffer = 2
			config.Policy = tc.policy
			queue := NewQueue[TestPayload](config)
			ctx := context.Background()
			require.NoError(t, queue.Publish(ctx, &TestPayload{ID: 1}))
			require.NoError(t, queue.Publish(ctx, &TestPayload{ID: 2}))

			switch tc.policy {
			case messaging.PolicyFail:
				assert.ErrorIs(t, queue.Publish(ctx, &TestPayload{ID: 3}), messaging.ErrQueueFull)
			case messaging.PolicyBlock:
				timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
				defer cancel()
				assert.ErrorIs(t, queue.Publish(timeoutCtx, &TestPayload{ID: 3}), context.DeadlineExceeded)

				done := make(chan error, 1)
				go func() { done <- queue.Publish(ctx, &TestPayload{ID: 3}) }()
				_, err := queue.Consume(ctx)
				require.NoError(t, err)
				assert.NoError(t, <-done)
			}
			assert.Equal(t, 2, queue.Size())
		})
	}
}

func TestQueue_ConsumeCancelled(t *testing.T) {
	queue := NewQueue[TestPayload](DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, queue.Publish(ctx, &TestPayload{}), context.Canceled)
}

func TestQueueConcurrency(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 4
	queue := NewQueue[TestPayload](config)
	ctx := context.Background()

	const producers = 10
	const perProducer = 20
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				assert.NoError(t, queue.Publish(ctx, &TestPayload{ID: p, Count: i}))
			}
		}(p)
	}

	received := 0
	for received < producers*perProducer {
		msg, err := queue.Consume(ctx)
		require.NoError(t, err)
		require.NoError(t, msg.Ack())
		received++
	}
	wg.Wait()
	assert.Equal(t, 0, queue.Size())
}
