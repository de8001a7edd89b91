package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()

	var slept []time.Duration
	original := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = original })

	return &slept
}

func TestDoRetriesWithDoublingDelay(t *testing.T) {
	slept := stubSleep(t)

	calls := 0
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Second}

	err := policy.Do(context.Background(), func(error) bool { return true }, func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}

	expected := []time.Duration{time.Second, 2 * time.Second}
	if len(*slept) != len(expected) {
		t.Fatalf("expected %d sleeps, got %d", len(expected), len(*slept))
	}
	for i, d := range expected {
		if (*slept)[i] != d {
			t.Fatalf("sleep %d: expected %s, got %s", i, d, (*slept)[i])
		}
	}
}

func TestDoStopsAfterAttemptsExhausted(t *testing.T) {
	stubSleep(t)

	calls := 0
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	err := policy.Do(context.Background(), func(error) bool { return true }, func() error {
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("expected the last error back, got %v", err)
	}

	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	stubSleep(t)

	permanent := errors.New("permanent")
	calls := 0

	err := Default().Do(context.Background(), func(err error) bool { return !errors.Is(err, permanent) }, func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	// Leave the real sleep in place but cancel immediately so waitFor returns
	// the context error instead of sleeping out the delay.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Minute}

	err := policy.Do(ctx, func(error) bool { return true }, func() error {
		calls++
		return errTransient
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", calls)
	}
}
