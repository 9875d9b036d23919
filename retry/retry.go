package retry

import (
	"context"
	"math/rand"
	"time"
)

// Options configures retry behavior
type Options struct {
	// MaxAttempts is the total number of calls, including the first one
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry is called before sleeping ahead of the next attempt
	OnRetry func(attempt int, delay time.Duration, err error)

	// Retryable reports whether err is worth another attempt. Nil retries every error.
	Retryable func(err error) bool

	// MinDelay returns a server requested wait for err, e.g. from Retry-After.
	// The backoff delay is raised to it when larger.
	MinDelay func(err error) time.Duration
}

// DefaultOptions returns default retry options
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Do calls op until it succeeds or MaxAttempts is reached.
// The last error is returned unchanged on exhaustion.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		if opts.Retryable != nil && !opts.Retryable(err) {
			break
		}

		delay := Backoff(opts.BaseDelay, opts.MaxDelay, attempt)
		if opts.MinDelay != nil {
			if requested := opts.MinDelay(err); requested > delay {
				delay = requested
			}
		}
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// Backoff returns min(base*2^attempt, max) plus up to 30% jitter
func Backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	delay := base
	for i := 0; i < attempt && (maxDelay <= 0 || delay < maxDelay); i++ {
		delay *= 2
	}
	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}

	jitterRange := int64(float64(delay) * 0.3)
	if jitterRange <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(jitterRange))
}
