package generation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/career-coach/internal/generation"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	t.Parallel()

	policy := generation.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond}
	transient := fmt.Errorf("%w: 503", generation.ErrTransientFailure)

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()
		calls := 0
		text, err := generation.WithRetry(context.Background(), logger.Discard(), policy,
			func(context.Context) (string, error) {
				calls++
				if calls < 3 {
					return "", transient
				}
				return "ok", nil
			})
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_, err := generation.WithRetry(context.Background(), logger.Discard(), policy,
			func(context.Context) (string, error) {
				calls++
				return "", transient
			})
		assert.ErrorIs(t, err, generation.ErrTransientFailure)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_, err := generation.WithRetry(context.Background(), logger.Discard(), policy,
			func(context.Context) (string, error) {
				calls++
				return "", generation.ErrContentBlocked
			})
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		slow := generation.RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour}
		_, err := generation.WithRetry(ctx, logger.Discard(), slow,
			func(context.Context) (string, error) {
				cancel()
				return "", transient
			})
		assert.ErrorIs(t, err, generation.ErrTransientFailure)
		assert.True(t, errors.Is(err, generation.ErrTransientFailure))
	})
}

func TestRetryPolicy(t *testing.T) {
	t.Parallel()

	p := generation.RetryPolicy{MaxRetries: -1}.Normalized()
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 2*time.Second, p.BaseDelay)

	p = generation.RetryPolicy{BaseDelay: time.Second}
	for attempt := range 3 {
		d := p.Backoff(attempt)
		full := time.Second << attempt
		assert.GreaterOrEqual(t, d, full/2)
		assert.Less(t, d, full)
	}
}
