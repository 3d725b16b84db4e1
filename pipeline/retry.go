package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff configures the retry executor. Delay after the n-th consecutive
// failure (n counted from 1) is BaseDelay * 2^n; MaxDelay caps the wait when
// positive, zero leaves the doubling uncapped.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Sleep overrides the delay wait, primarily for tests.
	// Nil uses a timer that aborts on context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait applied after the n-th consecutive failure.
func (b Backoff) Delay(n int) time.Duration {
	d := b.BaseDelay << n
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

func (b Backoff) wait(ctx context.Context, d time.Duration) error {
	if b.Sleep != nil {
		return b.Sleep(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	}
}

// Do invokes op until it succeeds, a permanent error occurs, or MaxAttempts
// consecutive failures are exhausted. The last failure's error is returned
// unchanged so callers can inspect it. Cancellation aborts the remaining
// attempts with ErrCancelled, whether it surfaces during a delay or from
// the operation itself.
func Do[T any](ctx context.Context, b Backoff, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if IsPermanent(err) || errors.Is(err, ErrCancelled) {
			return zero, err
		}

		if attempt == b.MaxAttempts {
			break
		}

		if err := b.wait(ctx, b.Delay(attempt)); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
