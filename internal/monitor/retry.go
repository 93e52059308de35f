package monitor

import "time"

// DefaultBaseDelay is the wait before the second attempt. Each further
// attempt doubles it.
const DefaultBaseDelay = time.Second

// RetryPolicy decides what happens after each probe attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Step is the decision taken after an attempt.
type Step struct {
	// Done is true when no further attempt will be made.
	Done bool
	// Wait is how long to sleep before the next attempt. Zero when Done.
	Wait time.Duration
}

// NewRetryPolicy returns the policy for a check with retryCount retries
func NewRetryPolicy(retryCount int) RetryPolicy {
	if retryCount < 0 {
		retryCount = 0
	}
	return RetryPolicy{
		MaxAttempts: retryCount + 1,
		BaseDelay:   DefaultBaseDelay,
	}
}

// Next returns the step after attempt (1-based) finished with ok.
func (p RetryPolicy) Next(attempt int, ok bool) Step {
	if ok || attempt >= p.MaxAttempts {
		return Step{Done: true}
	}
	return Step{Wait: p.Backoff(attempt)}
}

// MaxBackoff caps a single wait between attempts
const MaxBackoff = 10 * time.Minute

// Backoff is the delay after a failed attempt: BaseDelay * 2^(attempt-1),
// capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.BaseDelay <= 0 {
		return 0
	}
	wait := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if wait >= MaxBackoff/2 {
			return MaxBackoff
		}
		wait *= 2
	}
	return min(wait, MaxBackoff)
}
