// Package mock provides an in-memory llm.Provider for tests and for
// running the assessment pipeline without a model backend.
package mock

import (
	"context"
	"sync"

	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
)

// Provider implements llm.Provider with scripted responses. Responses
// are returned in order; once the script is exhausted the last entry
// repeats. The zero value returns empty completions.
//
// Safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []llm.CompletionRequest
	idx       int
}

// New returns a Provider that replies with the given responses in
// order.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// FailWith makes the next call (in script order) return err instead of
// a response. Interleave with responses by passing nil entries.
func (p *Provider) FailWith(errs ...error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = errs
	return p
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)
	i := p.idx
	p.idx++

	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}

	content := ""
	if len(p.responses) > 0 {
		if i >= len(p.responses) {
			i = len(p.responses) - 1
		}
		content = p.responses[i]
	}
	return &llm.CompletionResponse{
		Content: content,
		Usage: llm.Usage{
			PromptTokens:     len(req.Messages) * 8,
			CompletionTokens: (len(content) + 3) / 4,
		},
	}, nil
}

// Calls returns a copy of every request received so far.
func (p *Provider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.calls))
	copy(out, p.calls)
	return out
}
