// Package connectors implements source connectors for the French and EU
// legal data providers, plus the registry that dispatches to them.
package connectors

import (
	"fmt"
	"sync"

	"github.com/juralis/juralis-core/internal/core/domain"
	"github.com/juralis/juralis-core/internal/core/ports/driven"
)

// Ensure Registry implements ConnectorRegistry
var _ driven.ConnectorRegistry = (*Registry)(nil)

// Registry dispatches source IDs to connectors by explicit registration.
// Iteration order is registration order so ingestion runs and fallback
// search are deterministic.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]driven.Connector
	order      []string
}

// NewRegistry creates an empty connector registry
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]driven.Connector)}
}

// Register registers a connector under its ID, replacing any previous
// connector with the same ID.
func (r *Registry) Register(c driven.Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.connectors[c.ID()]; !exists {
		r.order = append(r.order, c.ID())
	}
	r.connectors[c.ID()] = c
}

// Get returns the connector for a source ID.
func (r *Registry) Get(sourceID string) (driven.Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[sourceID]
	if !ok {
		return nil, fmt.Errorf("connector %q: %w", sourceID, domain.ErrUnknownSource)
	}
	return c, nil
}

// List returns all connectors in registration order.
func (r *Registry) List() []driven.Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]driven.Connector, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.connectors[id])
	}
	return out
}

// Searchers returns connectors that support live search, in
// registration order.
func (r *Registry) Searchers() []driven.Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]driven.Connector, 0, len(r.order))
	for _, id := range r.order {
		if _, ok := r.connectors[id].(driven.Searcher); ok {
			out = append(out, r.connectors[id])
		}
	}
	return out
}
