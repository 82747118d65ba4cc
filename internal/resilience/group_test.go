package resilience_test

import (
	"errors"
	"testing"

	"github.com/SwarupShekhar/ENGAPP/internal/resilience"
)

// fakeBackend stands in for any provider value a Group can wrap.
type fakeBackend struct {
	name string
	err  error
}

func TestGroupUsesPrimaryWhenHealthy(t *testing.T) {
	t.Parallel()

	g := resilience.NewGroup(&fakeBackend{name: "primary"}, "primary", resilience.GroupConfig{})
	g.AddFallback("backup", &fakeBackend{name: "backup"})

	var used string
	err := g.Execute(func(b *fakeBackend) error {
		used = b.name
		return b.err
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if used != "primary" {
		t.Errorf("used backend %q, want primary", used)
	}
}

func TestGroupFallsBackOnFailure(t *testing.T) {
	t.Parallel()

	g := resilience.NewGroup(&fakeBackend{name: "primary", err: errBackend}, "primary", resilience.GroupConfig{})
	g.AddFallback("backup", &fakeBackend{name: "backup"})

	var used string
	err := g.Execute(func(b *fakeBackend) error {
		used = b.name
		return b.err
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if used != "backup" {
		t.Errorf("used backend %q, want backup", used)
	}
}

func TestGroupAllFailed(t *testing.T) {
	t.Parallel()

	g := resilience.NewGroup(&fakeBackend{name: "primary", err: errBackend}, "primary", resilience.GroupConfig{})
	g.AddFallback("backup", &fakeBackend{name: "backup", err: errBackend})

	err := g.Execute(func(b *fakeBackend) error { return b.err })
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Errorf("Execute() error = %v, want ErrAllFailed", err)
	}
}

func TestGroupSkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	primary := &fakeBackend{name: "primary", err: errBackend}
	g := resilience.NewGroup(primary, "primary", resilience.GroupConfig{
		Breaker: resilience.BreakerConfig{MaxFailures: 1},
	})
	g.AddFallback("backup", &fakeBackend{name: "backup"})

	// Trip the primary's breaker.
	if err := g.Execute(func(b *fakeBackend) error { return b.err }); err != nil {
		t.Fatalf("Execute() error = %v, want nil (backup healthy)", err)
	}

	primaryCalls := 0
	err := g.Execute(func(b *fakeBackend) error {
		if b.name == "primary" {
			primaryCalls++
		}
		return b.err
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if primaryCalls != 0 {
		t.Errorf("primary called %d times while breaker open, want 0", primaryCalls)
	}
}

func TestExecuteWithResult(t *testing.T) {
	t.Parallel()

	g := resilience.NewGroup(&fakeBackend{name: "primary", err: errBackend}, "primary", resilience.GroupConfig{})
	g.AddFallback("backup", &fakeBackend{name: "backup"})

	got, err := resilience.ExecuteWithResult(g, func(b *fakeBackend) (string, error) {
		return b.name, b.err
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult() error = %v, want nil", err)
	}
	if got != "backup" {
		t.Errorf("ExecuteWithResult() = %q, want backup", got)
	}
}
