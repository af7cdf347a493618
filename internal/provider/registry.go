package provider

import (
	"sync"

	"github.com/studyhub/resource-aggregator/internal/domain"
)

// Registry holds the provider singletons, keyed by source identifier. It
// is populated once at startup and read concurrently by every request.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.SourceID]Provider
	order     []domain.SourceID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[domain.SourceID]Provider),
	}
}

// Register adds a provider. Registering the same source twice replaces
// the earlier provider but keeps its registration position.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[p.Source()]; !exists {
		r.order = append(r.order, p.Source())
	}
	r.providers[p.Source()] = p
}

// Get returns the provider for a source, or nil when the source is
// unknown. Callers treat nil as "resolve to empty", never as an error.
func (r *Registry) Get(source domain.SourceID) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[source]
}

// Resolve maps source identifiers to providers, skipping unknown ids and
// disabled providers, preserving the given order.
func (r *Registry) Resolve(sources []domain.SourceID) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(sources))
	for _, id := range sources {
		if p, ok := r.providers[id]; ok && p.IsEnabled() {
			providers = append(providers, p)
		}
	}
	return providers
}

// All returns every registered provider in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		providers = append(providers, r.providers[id])
	}
	return providers
}
