// Package mock provides an in-memory speech.Provider for tests and for
// running the pipeline on pre-recorded evidence files.
package mock

import (
	"context"
	"sync"

	"github.com/SwarupShekhar/ENGAPP/pkg/provider/speech"
)

// Provider implements speech.Provider by returning a fixed result.
// Safe for concurrent use.
type Provider struct {
	mu     sync.Mutex
	result *speech.Result
	err    error
	calls  int
}

// New returns a Provider that answers every Assess call with result.
func New(result *speech.Result) *Provider {
	return &Provider{result: result}
}

// NewError returns a Provider that fails every Assess call with err.
func NewError(err error) *Provider {
	return &Provider{err: err}
}

// Assess implements speech.Provider.
func (p *Provider) Assess(ctx context.Context, audio []byte, cfg speech.AssessConfig) (*speech.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

// Calls returns how many Assess calls were made.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
