package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy controls exponential backoff between generation attempts.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Normalized replaces invalid values with defaults of 3 retries and a 2s base delay.
func (p RetryPolicy) Normalized() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 2 * time.Second
	}
	return p
}

// Backoff returns the delay before retry number attempt (0-based):
// base * 2^attempt scaled by a jitter factor in [0.5, 1.0).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	return time.Duration(backoff * (0.5 + rand.Float64()*0.5))
}

// WithRetry calls fn until it succeeds, returns an error that is not
// ErrTransientFailure, or the policy runs out of retries.
func WithRetry(ctx context.Context, logger *slog.Logger, policy RetryPolicy, fn func(ctx context.Context) (string, error)) (string, error) {
	policy = policy.Normalized()

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		text, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "generation succeeded after retry", "attempt", attemptNum)
			}
			return text, nil
		}

		logger.WarnContext(ctx, "generation attempt failed",
			"attempt", attemptNum,
			"max_attempts", policy.MaxRetries+1,
			"error", err)

		if !errors.Is(err, ErrTransientFailure) {
			return "", err
		}
		if attempt >= policy.MaxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, policy.MaxRetries, err)
		}

		delay := policy.Backoff(attempt)
		logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay_ms", delay.Milliseconds())

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}
