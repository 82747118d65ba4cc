package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SwarupShekhar/ENGAPP/internal/resilience"
)

var errBackend = errors.New("backend unavailable")

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{Name: "test"})
	for i := 0; i < 10; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("Execute() error = %v, want nil", err)
		}
	}
	if got := b.State(); got != resilience.StateClosed {
		t.Errorf("State() = %v, want closed", got)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "test",
		MaxFailures: 3,
	})
	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return errBackend }); !errors.Is(err, errBackend) {
			t.Fatalf("Execute() error = %v, want %v", err, errBackend)
		}
	}
	if got := b.State(); got != resilience.StateOpen {
		t.Fatalf("State() after failures = %v, want open", got)
	}

	err := b.Execute(func() error {
		t.Error("fn called while breaker open")
		return nil
	})
	if !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("Execute() while open error = %v, want ErrOpen", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "test",
		MaxFailures: 3,
	})
	for i := 0; i < 5; i++ {
		b.Execute(func() error { return errBackend })
		b.Execute(func() error { return nil })
	}
	if got := b.State(); got != resilience.StateClosed {
		t.Errorf("State() = %v, want closed", got)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:         "test",
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})
	b.Execute(func() error { return errBackend })
	if got := b.State(); got != resilience.StateOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := b.State(); got != resilience.StateHalfOpen {
		t.Fatalf("State() after reset timeout = %v, want half-open", got)
	}

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d error = %v, want nil", i, err)
		}
	}
	if got := b.State(); got != resilience.StateClosed {
		t.Errorf("State() after successful probes = %v, want closed", got)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:         "test",
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
	})
	b.Execute(func() error { return errBackend })
	time.Sleep(20 * time.Millisecond)

	b.Execute(func() error { return errBackend })
	if got := b.State(); got != resilience.StateOpen {
		t.Errorf("State() after failed probe = %v, want open", got)
	}
}

func TestBreakerReset(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "test",
		MaxFailures: 1,
	})
	b.Execute(func() error { return errBackend })
	b.Reset()
	if got := b.State(); got != resilience.StateClosed {
		t.Errorf("State() after Reset = %v, want closed", got)
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Errorf("Execute() after Reset error = %v, want nil", err)
	}
}
