package api

import (
	"testing"
	"time"
)

func TestAttemptLimiterBlocksAfterBurstOfFailures(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(loginAttemptRate, 3)
	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)

	for attempt := 0; attempt < 3; attempt++ {
		if limiter.tooManyRecent("10.0.0.1", now) {
			t.Fatalf("attempt %d: expected key to be allowed", attempt)
		}
		limiter.addFailure("10.0.0.1", now)
	}
	if !limiter.tooManyRecent("10.0.0.1", now) {
		t.Fatal("expected key to be limited after burst of failures")
	}
	if limiter.tooManyRecent("10.0.0.2", now) {
		t.Fatal("expected other keys to be unaffected")
	}
}

func TestAttemptLimiterRecoversOverTime(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(loginAttemptRate, 2)
	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	limiter.addFailure("key", now)
	limiter.addFailure("key", now)
	if !limiter.tooManyRecent("key", now) {
		t.Fatal("expected key to be limited")
	}

	if limiter.tooManyRecent("key", now.Add(31*time.Second)) {
		t.Fatal("expected one attempt to be restored after the refill interval")
	}
}

func TestAttemptLimiterReset(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(loginAttemptRate, 1)
	now := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	limiter.addFailure("key", now)
	limiter.reset("key")
	if limiter.tooManyRecent("key", now) {
		t.Fatal("expected reset key to be allowed")
	}
}
