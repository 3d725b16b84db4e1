package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Ashwini-Khunte/receipt-tracker/pipeline"
)

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name     string
		backoff  pipeline.Backoff
		failures int
		want     time.Duration
	}{
		{
			name:     "first failure doubles base",
			backoff:  pipeline.Backoff{BaseDelay: time.Second},
			failures: 1,
			want:     2 * time.Second,
		},
		{
			name:     "second failure quadruples base",
			backoff:  pipeline.Backoff{BaseDelay: time.Second},
			failures: 2,
			want:     4 * time.Second,
		},
		{
			name:     "third failure",
			backoff:  pipeline.Backoff{BaseDelay: 500 * time.Millisecond},
			failures: 3,
			want:     4 * time.Second,
		},
		{
			name:     "max delay caps growth",
			backoff:  pipeline.Backoff{BaseDelay: time.Second, MaxDelay: 3 * time.Second},
			failures: 4,
			want:     3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backoff.Delay(tt.failures); got != tt.want {
				t.Errorf("Delay(%d): got %v, want %v", tt.failures, got, tt.want)
			}
		})
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	sleeps := &instantSleep{}
	b := pipeline.Backoff{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       sleeps.sleep,
	}

	calls := 0
	result, err := pipeline.Do(context.Background(), b, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result: got %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(sleeps.delays) != len(want) {
		t.Fatalf("delays: got %v, want %v", sleeps.delays, want)
	}
	for i, d := range want {
		if sleeps.delays[i] != d {
			t.Errorf("delay %d: got %v, want %v", i, sleeps.delays[i], d)
		}
	}
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	b := testBackoff(3)

	calls := 0
	lastErr := errors.New("failure 3")
	_, err := pipeline.Do(context.Background(), b, func(ctx context.Context) (int, error) {
		calls++
		if calls == 3 {
			return 0, lastErr
		}
		return 0, errors.New("earlier failure")
	})

	if calls != 3 {
		t.Errorf("calls: got %d, want exactly 3", calls)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("error: got %v, want last failure", err)
	}
}

func TestDoPermanentErrorStopsRetrying(t *testing.T) {
	b := testBackoff(5)

	calls := 0
	permanent := pipeline.Permanent(errors.New("bad input"))
	_, err := pipeline.Do(context.Background(), b, func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if !pipeline.IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
}

func TestDoSentinelErrorsArePermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not configured", pipeline.ErrNotConfigured},
		{"missing document url", pipeline.ErrMissingDocumentURL},
		{"missing extraction data", pipeline.ErrMissingExtractionData},
		{"invalid fields", pipeline.ErrInvalidFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := pipeline.Do(context.Background(), testBackoff(4), func(ctx context.Context) (int, error) {
				calls++
				return 0, tt.err
			})

			if calls != 1 {
				t.Errorf("calls: got %d, want 1", calls)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("error: got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestDoCancelledOperationNotRetried(t *testing.T) {
	sleeps := &instantSleep{}
	b := pipeline.Backoff{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		Sleep:       sleeps.sleep,
	}

	calls := 0
	_, err := pipeline.Do(context.Background(), b, func(ctx context.Context) (int, error) {
		calls++
		return 0, fmt.Errorf("%w: %w", pipeline.ErrCancelled, context.Canceled)
	})

	if calls != 1 {
		t.Errorf("calls: got %d, want 1 (no retry after cancellation)", calls)
	}
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("error: got %v, want ErrCancelled", err)
	}
	if len(sleeps.delays) != 0 {
		t.Errorf("delays: got %v, want none", sleeps.delays)
	}
}

func TestDoCancellationDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	b := pipeline.Backoff{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			select {
			case <-ctx.Done():
				return errors.Join(pipeline.ErrCancelled, ctx.Err())
			case <-time.After(d):
				return nil
			}
		},
	}

	calls := 0
	_, err := pipeline.Do(ctx, b, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("transient")
	})

	if calls != 1 {
		t.Errorf("calls: got %d, want 1 (no attempt after cancellation)", calls)
	}
	if !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("error: got %v, want ErrCancelled", err)
	}
}

func TestDoCancellationWithRealTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	b := pipeline.Backoff{
		MaxAttempts: 3,
		BaseDelay:   time.Hour,
	}

	done := make(chan error, 1)
	go func() {
		_, err := pipeline.Do(ctx, b, func(ctx context.Context) (int, error) {
			return 0, errors.New("transient")
		})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, pipeline.ErrCancelled) {
			t.Errorf("error: got %v, want ErrCancelled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not abort on cancellation")
	}
}
