package app

import (
	"context"
	"time"

	"github.com/camlabs/camship/internal/domain"
	"github.com/camlabs/camship/internal/ports"
)

// Default retry policy values, matching the device's degraded-mode
// behavior: a bounded run of short waits, then one long wait.
const (
	DefaultMaxAttempts  = 5
	DefaultShortBackoff = 5 * time.Second
	DefaultLongBackoff  = 30 * time.Second
)

// Supervisor drives reconnection for the transport session. It performs
// one connect attempt at a time and owns the backoff waits between
// attempts; the streaming loop delegates to it whenever the session is
// not online. All calls happen on the loop's goroutine.
type Supervisor struct {
	transport ports.Transport
	policy    *domain.RetryPolicy
	logger    ports.Logger

	// sleep is injectable for tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration)
}

// NewSupervisor creates a supervisor around the given transport.
func NewSupervisor(transport ports.Transport, policy *domain.RetryPolicy, logger ports.Logger) *Supervisor {
	return &Supervisor{
		transport: transport,
		policy:    policy,
		logger:    logger,
		sleep:     sleepContext,
	}
}

// Connect performs a single connect attempt. On failure it records the
// attempt, logs, and waits the policy's backoff before returning the
// error. On success the failure history is cleared.
func (s *Supervisor) Connect(ctx context.Context) error {
	attempt := s.policy.Attempts() + 1
	s.logger.Info("connecting to stream server",
		ports.Int("attempt", attempt),
		ports.Int("max_attempts", s.policy.MaxAttempts),
	)

	if err := s.transport.Connect(ctx); err != nil {
		wait := s.policy.NextWait()
		if s.policy.Attempts() == 0 {
			// Counter wrapped: short attempts are exhausted.
			s.logger.Warn("max connect attempts reached, entering degraded wait",
				ports.Err(err),
				ports.Duration("wait", wait),
			)
		} else {
			s.logger.Warn("connect failed",
				ports.Err(err),
				ports.Int("attempt", attempt),
				ports.Duration("wait", wait),
			)
		}
		s.sleep(ctx, wait)
		return err
	}

	s.policy.Reset()
	return nil
}

// Attempts returns the current consecutive-failure count.
func (s *Supervisor) Attempts() int {
	return s.policy.Attempts()
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
