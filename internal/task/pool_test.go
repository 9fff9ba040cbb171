package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	pool := NewPool(PoolConfig{WorkerCount: 5, QueueSize: 3}, logger.Discard())
	assert.Equal(t, 5, pool.workerCount)
	assert.Equal(t, 3, cap(pool.jobs))
	assert.Nil(t, pool.errorHandler)

	// Invalid worker counts fall back to 1
	pool = NewPool(PoolConfig{WorkerCount: 0}, logger.Discard())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewPool(PoolConfig{WorkerCount: -5, QueueSize: -1}, logger.Discard())
	assert.Equal(t, 1, pool.workerCount)
	assert.Equal(t, 0, cap(pool.jobs))
}

func TestPool_ExecutesJobs(t *testing.T) {
	pool := NewPool(PoolConfig{WorkerCount: 2, QueueSize: 4}, logger.Discard())
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	done := make(chan string, 4)
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		require.NoError(t, pool.Submit(JobFunc{JobID: id, Fn: func(context.Context) error {
			defer wg.Done()
			done <- id
			return nil
		}}))
	}

	waitOrFail(t, &wg)
	close(done)
	var got []string
	for id := range done {
		got = append(got, id)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, got)
}

func TestPool_ErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context) error
		want string
	}{
		{"error", func(context.Context) error { return errors.New("test error") }, "test error"},
		{"panic", func(context.Context) error { panic("test panic") }, "job panicked: test panic"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errorHandled := make(chan error, 1)
			pool := NewPool(PoolConfig{WorkerCount: 1, QueueSize: 1}, logger.Discard())
			pool.SetErrorHandler(func(_ Job, err error) { errorHandled <- err })
			pool.Start()
			defer pool.Stop()

			require.NoError(t, pool.Submit(JobFunc{JobID: tc.name, Fn: tc.fn}))

			select {
			case err := <-errorHandled:
				assert.EqualError(t, err, tc.want)
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for error handler")
			}
		})
	}
}

func TestPool_SubmitFull(t *testing.T) {
	pool := NewPool(PoolConfig{WorkerCount: 1, QueueSize: 1}, logger.Discard())
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	running := make(chan struct{})
	require.NoError(t, pool.Submit(JobFunc{JobID: "busy", Fn: func(context.Context) error {
		close(running)
		<-release
		return nil
	}}))
	<-running

	require.NoError(t, pool.Submit(JobFunc{JobID: "queued", Fn: func(context.Context) error { return nil }}))

	err := pool.Submit(JobFunc{JobID: "rejected", Fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolFull)

	close(release)
}

func TestPool_StopCancelsRunningJobs(t *testing.T) {
	pool := NewPool(PoolConfig{WorkerCount: 1}, logger.Discard())
	pool.Start()

	running := make(chan struct{})
	cancelled := make(chan struct{})
	require.Eventually(t, func() bool {
		return pool.Submit(JobFunc{JobID: "long", Fn: func(ctx context.Context) error {
			close(running)
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		}}) == nil
	}, time.Second, 5*time.Millisecond)
	<-running

	pool.Stop()

	select {
	case <-cancelled:
	default:
		t.Fatal("running job was not cancelled by Stop")
	}

	assert.ErrorIs(t, pool.Submit(JobFunc{JobID: "late"}), ErrPoolClosed)
	pool.Stop()
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}
}
