package domain

import "time"

// RetryPolicy tracks connect attempts and decides the wait before the
// next one. Attempts are counted up to MaxAttempts with ShortBackoff
// between them; on exhaustion the counter resets and one LongBackoff is
// taken before retrying (degraded mode, to avoid hammering the server).
// Any successful connect clears the history.
type RetryPolicy struct {
	// MaxAttempts is the number of short-backoff attempts before
	// entering the long wait.
	MaxAttempts int

	// ShortBackoff is the wait between regular attempts.
	ShortBackoff time.Duration

	// LongBackoff is the wait after MaxAttempts consecutive failures.
	// Must be strictly longer than ShortBackoff.
	LongBackoff time.Duration

	attempts int
}

// Attempts returns the current consecutive-failure count.
func (p *RetryPolicy) Attempts() int {
	return p.attempts
}

// NextWait records a failed attempt and returns the wait duration before
// the next attempt. When the counter reaches MaxAttempts it resets to
// zero and the long backoff is returned.
func (p *RetryPolicy) NextWait() time.Duration {
	p.attempts++
	if p.attempts >= p.MaxAttempts {
		p.attempts = 0
		return p.LongBackoff
	}
	return p.ShortBackoff
}

// Reset clears the failure history. Called on any successful connect.
func (p *RetryPolicy) Reset() {
	p.attempts = 0
}
