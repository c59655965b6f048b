package cfn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{InitialDelay: time.Microsecond, MaxAttempts: attempts, Jitter: false}
}

func alwaysRetry(error) bool { return true }
func neverRetry(error) bool  { return false }

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastPolicy(5), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	}, alwaysRetry)
	if err != nil {
		t.Fatalf("Retry() error: %v", err)
	}
	if result != "ok" {
		t.Errorf("Retry() = %q, want %q", result, "ok")
	}
	if calls != 1 {
		t.Errorf("called %d times, want 1", calls)
	}
}

func TestRetry_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastPolicy(5), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &ThrottlingError{Message: "Rate exceeded"}
		}
		return 42, nil
	}, alwaysRetry)
	if err != nil {
		t.Fatalf("Retry() error: %v", err)
	}
	if result != 42 {
		t.Errorf("Retry() = %d, want 42", result)
	}
	if calls != 3 {
		t.Errorf("called %d times, want 3", calls)
	}
}

func TestRetry_ExhaustsExactlyMaxAttempts(t *testing.T) {
	calls := 0
	failure := &ThrottlingError{Message: "Rate exceeded"}
	_, err := Retry(context.Background(), fastPolicy(15), func(context.Context) (string, error) {
		calls++
		return "", failure
	}, alwaysRetry)
	if calls != 15 {
		t.Errorf("called %d times, want exactly 15", calls)
	}
	// Exhaustion surfaces the last error unchanged, with no wrapping.
	if err != failure { //nolint:errorlint // identity is the contract here
		t.Errorf("Retry() = %v (%T), want the last error unchanged", err, err)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	failure := &ValidationError{Message: "Stack does not exist"}
	_, err := Retry(context.Background(), fastPolicy(15), func(context.Context) (string, error) {
		calls++
		return "", failure
	}, neverRetry)
	if calls != 1 {
		t.Errorf("called %d times, want 1", calls)
	}
	if err != failure { //nolint:errorlint
		t.Errorf("Retry() = %v, want the original error unchanged", err)
	}
}

func TestRetry_PredicateDecidesPerKind(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &ThrottlingError{Message: "Rate exceeded"}
		}
		return "", &ValidationError{Message: "bad template"}
	}, retryGetTemplate)
	if calls != 2 {
		t.Errorf("called %d times, want 2", calls)
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("Retry() = %T, want *ValidationError", err)
	}
}

func TestRetry_CanceledContextStopsWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := RetryPolicy{InitialDelay: time.Hour, MaxAttempts: 5}
	done := make(chan error, 1)
	go func() {
		_, err := Retry(ctx, policy, func(context.Context) (string, error) {
			calls++
			return "", &ThrottlingError{Message: "Rate exceeded"}
		}, alwaysRetry)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Retry() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Retry() did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("called %d times, want 1", calls)
	}
}

func TestBackoffDelay_ExponentialWithoutJitter(t *testing.T) {
	policy := RetryPolicy{InitialDelay: 100 * time.Millisecond, Jitter: false}

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}
	for i, w := range want {
		if got := backoffDelay(i+1, policy); got != w {
			t.Errorf("backoffDelay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoffDelay_JitterStaysMonotonic(t *testing.T) {
	policy := RetryPolicy{InitialDelay: 100 * time.Millisecond, Jitter: true}

	// Jitter adds at most one extra magnitude, so the ceiling of attempt n
	// equals the floor of attempt n+1: delays never decrease.
	for attempt := 1; attempt <= 6; attempt++ {
		floor := policy.InitialDelay << (attempt - 1)
		ceiling := 2 * floor
		for i := 0; i < 50; i++ {
			d := backoffDelay(attempt, policy)
			if d < floor || d > ceiling {
				t.Fatalf("backoffDelay(%d) = %v, want within [%v, %v]", attempt, d, floor, ceiling)
			}
		}
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()
	if policy.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", policy.InitialDelay)
	}
	if policy.MaxAttempts != 15 {
		t.Errorf("MaxAttempts = %d, want 15", policy.MaxAttempts)
	}
	if !policy.Jitter {
		t.Error("Jitter should default to true")
	}
}
