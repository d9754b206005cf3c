package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsJobs(t *testing.T) {
	q := NewQueue("test", QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	var ran int32
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{Name: "count", Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}}))
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&ran) == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := NewQueue("test", QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	var calls int32
	require.NoError(t, q.Enqueue(Job{Name: "flaky", Run: func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("not yet")
		}
		return nil
	}}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 3 }, time.Second, 5*time.Millisecond)
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	q := NewQueue("test", QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	var calls int32
	require.NoError(t, q.Enqueue(Job{Name: "broken", Run: func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("always")
	}}))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	q.Stop()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueEnqueueErrors(t *testing.T) {
	q := NewQueue("test", QueueConfig{BufferSize: 1})
	noop := Job{Name: "noop", Run: func(ctx context.Context) error { return nil }}

	assert.ErrorIs(t, q.Enqueue(noop), ErrNotRunning)
	assert.Error(t, q.Enqueue(Job{Name: "empty"}))

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(noop), ErrNotRunning)
}
