package settlement

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("unreachable")
	attempts := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := withRetry(ctx, 5, time.Millisecond, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestNextDelayCapsGrowth(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want time.Duration
	}{
		{100 * time.Millisecond, 200 * time.Millisecond},
		{time.Second, maxRetryDelay},
		{1500 * time.Millisecond, maxRetryDelay},
		{maxRetryDelay, maxRetryDelay},
		{5 * time.Second, maxRetryDelay},
	}
	for _, tt := range tests {
		if got := nextDelay(tt.in); got != tt.want {
			t.Fatalf("nextDelay(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
