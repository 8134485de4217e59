package index

import (
	"errors"
	"testing"
	"time"
)

func TestBackoffGrowth(t *testing.T) {
	delays := []time.Duration{}

	s := NewSupervisor()
	s.sleep = func(d time.Duration) {
		delays = append(delays, d)
	}

	failures := 12
	attempts := 0

	err := s.Do(func() error {
		attempts++
		if attempts <= failures {
			return errors.New("connection lost")
		}
		return nil
	}, func() error {
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %s", err)
	}

	if len(delays) != failures {
		t.Fatalf("expected %d delays, got %d", failures, len(delays))
	}

	for n := 1; n <= failures; n++ {
		exp := n
		if exp > retryMaxExponent {
			exp = retryMaxExponent
		}
		expected := retryBaseDelay * (1 << exp)

		if delays[n-1] != expected {
			t.Errorf("delay after %d failures: expected %s, but got %s", n, expected, delays[n-1])
		}
	}

	if s.Failures() != 0 {
		t.Errorf("expected failure counter to reset to 0 after success, got %d", s.Failures())
	}

	if s.State() != RetryStateSuccess {
		t.Errorf("expected terminal state %s, got %s", RetryStateSuccess, s.State())
	}
}

func TestCounterResetBetweenEvents(t *testing.T) {
	s := NewSupervisor()
	s.sleep = func(d time.Duration) {}

	// one failure, then success
	attempts := 0
	err := s.Do(func() error {
		attempts++
		if attempts == 1 {
			return errors.New("connection lost")
		}
		return nil
	}, func() error { return nil })
	if err != nil {
		t.Fatalf("expected success, got %s", err)
	}

	// the next event starts from the base delay again
	var delay time.Duration
	s.sleep = func(d time.Duration) {
		delay = d
	}

	attempts = 0
	err = s.Do(func() error {
		attempts++
		if attempts == 1 {
			return errors.New("connection lost")
		}
		return nil
	}, func() error { return nil })
	if err != nil {
		t.Fatalf("expected success, got %s", err)
	}

	expected := retryBaseDelay * 2
	if delay != expected {
		t.Errorf("expected delay %s after reset, got %s", expected, delay)
	}
}

func TestReconnectFailureIsFatal(t *testing.T) {
	s := NewSupervisor()
	s.sleep = func(d time.Duration) {}

	poolErr := errors.New("pool unreachable")
	attempts := 0

	err := s.Do(func() error {
		attempts++
		return errors.New("connection lost")
	}, func() error {
		return poolErr
	})
	if err == nil {
		t.Fatal("expected a fatal error")
	}

	if !errors.Is(err, poolErr) {
		t.Errorf("expected error to wrap %s, got %s", poolErr, err)
	}

	if attempts != 1 {
		t.Errorf("expected a single attempt before the fatal reconnect, got %d", attempts)
	}
}

func TestStateTransitions(t *testing.T) {
	s := NewSupervisor()

	states := []RetryState{}
	s.sleep = func(d time.Duration) {
		states = append(states, s.State())
	}

	attempts := 0
	err := s.Do(func() error {
		states = append(states, s.State())
		attempts++
		if attempts == 1 {
			return errors.New("connection lost")
		}
		return nil
	}, func() error {
		states = append(states, s.State())
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %s", err)
	}

	expected := []RetryState{RetryStateAttempting, RetryStateBackoffWait, RetryStateReconnect, RetryStateAttempting}
	if len(states) != len(expected) {
		t.Fatalf("expected %d recorded states, got %d", len(expected), len(states))
	}

	for i, st := range expected {
		if states[i] != st {
			t.Errorf("state %d: expected %s, got %s", i, st, states[i])
		}
	}
}
