package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrAllFailed is returned when every entry in a [Group] fails or has
// an open breaker.
var ErrAllFailed = errors.New("resilience: all providers failed")

// GroupConfig configures the per-entry breaker created for each
// provider in a [Group].
type GroupConfig struct {
	Breaker BreakerConfig
}

// groupEntry pairs a provider value with its dedicated breaker.
type groupEntry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Group wraps a primary and zero or more fallback instances of the
// same provider type. When the primary fails, or its breaker is open,
// the next healthy fallback is tried in registration order. The model
// backend is chained this way when a fallback provider is configured.
//
// Group is safe for concurrent use after registration is complete.
type Group[T any] struct {
	entries []groupEntry[T]
	cfg     GroupConfig
}

// NewGroup creates a [Group] with primary as the first entry.
// Additional fallbacks are registered via [Group.AddFallback].
func NewGroup[T any](primary T, primaryName string, cfg GroupConfig) *Group[T] {
	bCfg := cfg.Breaker
	bCfg.Name = primaryName
	return &Group[T]{
		entries: []groupEntry[T]{
			{
				name:    primaryName,
				value:   primary,
				breaker: NewBreaker(bCfg),
			},
		},
		cfg: cfg,
	}
}

// AddFallback appends a fallback provider. Fallbacks are tried in the
// order they are added, after the primary.
func (g *Group[T]) AddFallback(name string, fallback T) {
	bCfg := g.cfg.Breaker
	bCfg.Name = name
	g.entries = append(g.entries, groupEntry[T]{
		name:    name,
		value:   fallback,
		breaker: NewBreaker(bCfg),
	})
}

// Execute tries fn against each entry in order until one succeeds.
// Open-breaker entries are skipped. Returns [ErrAllFailed] wrapped
// with the last error if every entry fails.
func (g *Group[T]) Execute(fn func(T) error) error {
	var lastErr error
	for i := range g.entries {
		entry := &g.entries[i]
		err := entry.breaker.Execute(func() error {
			return fn(entry.value)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("skipping provider (circuit open)", "provider", entry.name)
		} else {
			slog.Warn("provider failed, trying next",
				"provider", entry.name, "error", err)
		}
	}
	return fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}

// ExecuteWithResult tries fn against each entry in the group until one
// succeeds, returning both the result value and error. This is a
// package-level function because Go does not support method-level type
// parameters.
func ExecuteWithResult[T any, R any](g *Group[T], fn func(T) (R, error)) (R, error) {
	var (
		lastErr error
		zero    R
	)
	for i := range g.entries {
		entry := &g.entries[i]
		var result R
		err := entry.breaker.Execute(func() error {
			var innerErr error
			result, innerErr = fn(entry.value)
			return innerErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("skipping provider (circuit open)", "provider", entry.name)
		} else {
			slog.Warn("provider failed, trying next",
				"provider", entry.name, "error", err)
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}
