package monitor

import (
	"testing"
	"time"
)

func TestRetryPolicyAttempts(t *testing.T) {
	for retries := 0; retries <= 4; retries++ {
		policy := NewRetryPolicy(retries)

		attempts := 0
		for attempt := 1; ; attempt++ {
			attempts++
			if policy.Next(attempt, false).Done {
				break
			}
		}

		if attempts != retries+1 {
			t.Errorf("retryCount=%d: expected %d attempts when every attempt fails, got %d", retries, retries+1, attempts)
		}
	}
}

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	policy := NewRetryPolicy(5)

	step := policy.Next(1, true)
	if !step.Done {
		t.Error("Expected success to finish the check")
	}
	if step.Wait != 0 {
		t.Errorf("Expected no wait after success, got %s", step.Wait)
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := NewRetryPolicy(3)

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, w := range want {
		step := policy.Next(i+1, false)
		if step.Done {
			t.Fatalf("attempt %d: expected another attempt", i+1)
		}
		if step.Wait != w {
			t.Errorf("attempt %d: expected wait %s, got %s", i+1, w, step.Wait)
		}
	}

	last := policy.Next(4, false)
	if !last.Done || last.Wait != 0 {
		t.Errorf("Expected no wait after the final attempt, got %+v", last)
	}
}

func TestNewRetryPolicyClampsNegative(t *testing.T) {
	if got := NewRetryPolicy(-3).MaxAttempts; got != 1 {
		t.Errorf("Expected 1 attempt, got %d", got)
	}
}

func TestRetryPolicyBackoffIsCapped(t *testing.T) {
	policy := NewRetryPolicy(100)

	for _, attempt := range []int{11, 20, 64, 65, 100} {
		wait := policy.Backoff(attempt)
		if wait != MaxBackoff {
			t.Errorf("attempt %d: expected wait capped at %s, got %s", attempt, MaxBackoff, wait)
		}
	}

	if got := policy.Backoff(10); got != 512*time.Second {
		t.Errorf("Expected 512s before the cap, got %s", got)
	}
}
