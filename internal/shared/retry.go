package shared

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryPolicy bounds retries of transient upstream failures.
//
// Attempt n waits Base * 2^(n-1) before retrying, so the default policy of
// 3 attempts with a 1s base sleeps 1s then 2s before giving up.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
}

// DefaultRetryPolicy mirrors the capture collaborators' contract: three
// attempts with exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Base: time.Second}
}

// Retry invokes fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. Only errors wrapping [ErrRetryable] are
// retried; anything else propagates immediately. Exhausting the budget
// converts the last retryable error to a fatal one.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.Is(err, ErrRetryable) {
			return err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		wait := policy.Base << (attempt - 1)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %w", policy.MaxAttempts, err)
}
