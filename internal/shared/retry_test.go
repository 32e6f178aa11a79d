package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Base: time.Millisecond}
}

func TestRetry(t *testing.T) {
	t.Run("SucceedsFirstTry", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastPolicy(3), func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("RetryableErrorIsRetried", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastPolicy(3), func() error {
			calls++
			if calls < 3 {
				return fmt.Errorf("%w: rate limited", ErrRetryable)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("FatalErrorIsNotRetried", func(t *testing.T) {
		fatal := errors.New("bad request")
		calls := 0
		err := Retry(context.Background(), fastPolicy(3), func() error {
			calls++
			return fatal
		})
		if !errors.Is(err, fatal) {
			t.Errorf("expected fatal error, got %v", err)
		}
		if calls != 1 {
			t.Errorf("fatal error should not be retried, got %d calls", calls)
		}
	})

	t.Run("ExhaustionWrapsLastError", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), fastPolicy(3), func() error {
			calls++
			return fmt.Errorf("%w: still down", ErrRetryable)
		})
		if err == nil {
			t.Fatal("expected error after exhaustion")
		}
		if !errors.Is(err, ErrRetryable) {
			t.Errorf("exhaustion should wrap the last error, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 attempts, got %d", calls)
		}
	})

	t.Run("ContextCancellationStopsRetries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Retry(ctx, RetryPolicy{MaxAttempts: 5, Base: time.Minute}, func() error {
			calls++
			cancel()
			return fmt.Errorf("%w: transient", ErrRetryable)
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call before cancellation, got %d", calls)
		}
	})
}
