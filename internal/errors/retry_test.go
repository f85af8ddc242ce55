package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  maxAttempts,
		BaseDelay:    time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		JitterFactor: 0,
	}
}

func TestRetryWithResult_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := RetryWithResult(context.Background(), fastRetryConfig(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &TransientError{Err: errors.New("overloaded")}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithResult_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := &PermanentError{Err: errors.New("bad api key"), StatusCode: 401}
	_, err := RetryWithResult(context.Background(), fastRetryConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error, got: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries on permanent failure)", calls)
	}
}

func TestRetryWithResult_ExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := RetryWithResult(context.Background(), fastRetryConfig(2), func(ctx context.Context) (int, error) {
		calls++
		return 0, &TransientError{Err: fmt.Errorf("attempt %d", calls)}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// MaxAttempts retries after the first attempt.
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithResult(ctx, fastRetryConfig(3), func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestBackoff_CappedAtMaxDelay(t *testing.T) {
	config := RetryConfig{
		BaseDelay:    time.Second,
		MaxDelay:     4 * time.Second,
		JitterFactor: 0,
	}
	if got := backoff(0, config); got != time.Second {
		t.Errorf("backoff(0) = %v, want 1s", got)
	}
	if got := backoff(1, config); got != 2*time.Second {
		t.Errorf("backoff(1) = %v, want 2s", got)
	}
	if got := backoff(10, config); got != 4*time.Second {
		t.Errorf("backoff(10) = %v, want capped 4s", got)
	}
}

func TestBackoff_JitterStaysWithinBounds(t *testing.T) {
	config := RetryConfig{
		BaseDelay:    time.Second,
		MaxDelay:     30 * time.Second,
		JitterFactor: 0.25,
	}
	for i := 0; i < 100; i++ {
		got := backoff(1, config)
		if got < 1500*time.Millisecond || got > 2500*time.Millisecond {
			t.Fatalf("backoff(1) = %v, want within [1.5s, 2.5s]", got)
		}
	}
}
