package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
)

// Registry holds the configured connectors, keyed by type.
// Registration happens at startup; lookups are read-only afterwards.
type Registry struct {
	connectors map[domain.ConnectorType]driven.Connector
}

// NewRegistry creates a registry from the given connectors.
func NewRegistry(connectors ...driven.Connector) *Registry {
	r := &Registry{connectors: make(map[domain.ConnectorType]driven.Connector, len(connectors))}
	for _, c := range connectors {
		r.connectors[c.Type()] = c
	}
	return r
}

// Get returns the connector for the given type.
func (r *Registry) Get(t domain.ConnectorType) (driven.Connector, error) {
	c, ok := r.connectors[t]
	if !ok {
		return nil, fmt.Errorf("%w: connector %q not configured", domain.ErrUnsupportedType, t)
	}
	return c, nil
}

// Types returns the registered connector types, sorted for stable output.
func (r *Registry) Types() []domain.ConnectorType {
	types := make([]domain.ConnectorType, 0, len(r.connectors))
	for t := range r.connectors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
