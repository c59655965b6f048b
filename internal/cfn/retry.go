package cfn

import (
	"context"
	"math/rand"
	"time"

	"github.com/stackdiff/stackdiff/internal/output"
)

// RetryPolicy configures exponential backoff for transient CloudFormation
// failures. One policy is shared read-only by every retried call in a run;
// it is injected into the lifecycle constructor so tests can substitute a
// zero-delay policy.
type RetryPolicy struct {
	InitialDelay time.Duration // delay before the second attempt
	MaxAttempts  int           // total attempts, including the first
	Jitter       bool          // randomize each delay by up to its own magnitude
}

const (
	DefaultInitialDelay = 100 * time.Millisecond
	DefaultMaxAttempts  = 15
)

// DefaultRetryPolicy returns the production backoff configuration.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay: DefaultInitialDelay,
		MaxAttempts:  DefaultMaxAttempts,
		Jitter:       true,
	}
}

// Retry invokes op until it succeeds, retryable rejects its error, or the
// policy's attempt budget is spent. Classification happens inside op; the
// retrier only consults the predicate, so it is call-agnostic.
//
// On exhaustion or a non-retryable failure the last error is returned
// unchanged — callers distinguish "gave up after N attempts" only via the
// debug telemetry, never by error shape.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error), retryable func(error) bool) (T, error) {
	var zero T
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) || attempt == policy.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, policy)
		output.Debug("retrying after transient error", "attempt", attempt, "delay", delay, "error", err)

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

// backoffDelay computes the wait after the given attempt:
// InitialDelay * 2^(attempt-1), plus up to the same magnitude of jitter.
// The jittered maximum of attempt n equals the minimum of attempt n+1, so
// delays are monotonically non-decreasing across attempts.
func backoffDelay(attempt int, policy RetryPolicy) time.Duration {
	delay := policy.InitialDelay << (attempt - 1)
	if policy.Jitter && delay > 0 {
		delay += time.Duration(rand.Int63n(int64(delay))) //nolint:gosec // jitter doesn't need crypto/rand
	}
	return delay
}
