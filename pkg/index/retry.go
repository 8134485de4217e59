package index

import (
	"fmt"
	"log"
	"time"
)

type RetryState string

const (
	RetryStateAttempting  RetryState = "attempting"
	RetryStateBackoffWait RetryState = "backoff_wait"
	RetryStateReconnect   RetryState = "reconnect"
	RetryStateSuccess     RetryState = "success"
)

const (
	retryBaseDelay   = 500 * time.Millisecond
	retryMaxExponent = 8
)

// Supervisor wraps a storage write with unbounded retries and bounded
// exponential backoff. A failed statement is assumed to have poisoned its
// connection, so each retry reconnects before attempting again. A failed
// reconnect means the storage cluster is unreachable and is fatal.
type Supervisor struct {
	base        time.Duration
	maxExponent int

	failures int
	state    RetryState

	sleep func(time.Duration)
}

func NewSupervisor() *Supervisor {
	return &Supervisor{
		base:        retryBaseDelay,
		maxExponent: retryMaxExponent,
		state:       RetryStateSuccess,
		sleep: func(d time.Duration) {
			<-time.After(d)
		},
	}
}

func (s *Supervisor) State() RetryState {
	return s.state
}

func (s *Supervisor) Failures() int {
	return s.failures
}

// Delay returns base * 2^min(failures, maxExponent)
func (s *Supervisor) Delay() time.Duration {
	exp := s.failures
	if exp > s.maxExponent {
		exp = s.maxExponent
	}

	return s.base * (1 << exp)
}

// Do runs attempt until it succeeds. Every failure waits out the backoff
// delay and reconnects before the next attempt. Only a reconnect error is
// returned to the caller.
func (s *Supervisor) Do(attempt func() error, reconnect func() error) error {
	for {
		s.state = RetryStateAttempting

		err := attempt()
		if err == nil {
			s.failures = 0
			s.state = RetryStateSuccess
			return nil
		}

		s.failures++
		delay := s.Delay()

		log.Default().Printf("[retry] attempt %d failed: %v, retrying in %s", s.failures, err, delay)

		s.state = RetryStateBackoffWait
		s.sleep(delay)

		s.state = RetryStateReconnect
		err = reconnect()
		if err != nil {
			return fmt.Errorf("failed to reconnect to storage: %w", err)
		}
	}
}
