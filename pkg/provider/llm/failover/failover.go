// Package failover chains model backends behind per-backend circuit
// breakers. Completions go to the primary backend; when it fails or
// its breaker is open, the fallbacks are tried in registration order.
package failover

import (
	"context"

	"github.com/SwarupShekhar/ENGAPP/internal/resilience"
	"github.com/SwarupShekhar/ENGAPP/pkg/provider/llm"
)

// Provider implements [llm.Provider] over a [resilience.Group] of
// backends. Register all fallbacks before the first Complete call;
// after that the Provider is safe for concurrent use.
type Provider struct {
	group *resilience.Group[llm.Provider]
}

var _ llm.Provider = (*Provider)(nil)

// New creates a failover provider with primary as the first backend.
// The name labels the primary's breaker in logs.
func New(primary llm.Provider, name string) *Provider {
	return &Provider{
		group: resilience.NewGroup(primary, name, resilience.GroupConfig{}),
	}
}

// AddFallback registers an additional backend, tried after the primary
// and any earlier fallbacks.
func (p *Provider) AddFallback(name string, backend llm.Provider) {
	p.group.AddFallback(name, backend)
}

// Complete forwards req to the first healthy backend. Returns
// [resilience.ErrAllFailed] wrapped with the last backend error when
// every backend fails.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return resilience.ExecuteWithResult(p.group, func(backend llm.Provider) (*llm.CompletionResponse, error) {
		return backend.Complete(ctx, req)
	})
}
