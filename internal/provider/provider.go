// Package provider defines the uniform adapter interface over the
// text-generation vendors a scan queries, plus a registry for dynamic
// dispatch by provider id. Adapters are constructed from configuration
// at pipeline-build time so tests can substitute fakes.
package provider

import (
	"context"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Generation is the outcome of one successful text-generation call.
type Generation struct {
	Text  string
	Usage model.TokenUsage
}

// Provider is one external text-generation vendor. Any API with the
// shape "send prompt + model id + output cap; receive text + token
// counts, or an error" is substitutable.
type Provider interface {
	// ID returns the stable provider identifier (e.g. "openai").
	ID() string
	// Model returns the fixed model identifier this adapter calls.
	Model() string
	// Generate issues one text-generation request. Implementations
	// return errors as-is; failure containment is the caller's job.
	Generate(ctx context.Context, prompt string, maxTokens int) (*Generation, error)
}

// Registry holds providers in registration order and resolves them
// by id.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider. Re-registering an id replaces the previous
// provider but keeps its position.
func (r *Registry) Register(p Provider) {
	if _, exists := r.providers[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.providers[p.ID()] = p
}

// Get returns the provider with the given id, or nil.
func (r *Registry) Get(id string) Provider {
	return r.providers[id]
}

// All returns providers in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// IDs returns provider ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.order)
}
