package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig controls [Retry].
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	// Default: 3.
	MaxAttempts int

	// BaseDelay is the wait before the first retry; each subsequent
	// wait doubles. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Default: 8s.
	MaxDelay time.Duration

	// Jitter, between 0 and 1, is the fraction of each delay that is
	// randomized. Default: 0.2.
	Jitter float64
}

func (cfg *RetryConfig) applyDefaults() {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 8 * time.Second
	}
	if cfg.Jitter <= 0 || cfg.Jitter > 1 {
		cfg.Jitter = 0.2
	}
}

// Permanent wraps err to tell [Retry] that retrying cannot help.
func Permanent(err error) error {
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Retry runs fn up to cfg.MaxAttempts times with capped exponential
// backoff between attempts. It stops early when fn succeeds, when fn
// returns an error wrapped by [Permanent], or when ctx is done; the
// context error wins in that case.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg.applyDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoff(cfg, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("resilience: %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// backoff returns the wait after the given 1-based attempt number,
// doubling per attempt, capped, with a random jitter component.
func backoff(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay << (attempt - 1)
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	jitter := time.Duration(rand.Float64() * cfg.Jitter * float64(delay))
	return delay - jitter
}
