package adapters

import (
	"strings"

	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
)

// Registry holds the active courier adapters keyed by provider name.
type Registry struct {
	order    []string
	adapters map[string]providerdomain.Adapter
}

// NewRegistry builds a registry from the given adapters, preserving
// registration order for deterministic fan-out.
func NewRegistry(list ...providerdomain.Adapter) *Registry {
	r := &Registry{adapters: make(map[string]providerdomain.Adapter, len(list))}
	for _, adapter := range list {
		name := strings.ToLower(strings.TrimSpace(adapter.Name()))
		if name == "" {
			continue
		}
		if _, exists := r.adapters[name]; exists {
			continue
		}
		r.adapters[name] = adapter
		r.order = append(r.order, name)
	}
	return r
}

// Get returns the adapter for a provider name.
func (r *Registry) Get(name string) (providerdomain.Adapter, bool) {
	adapter, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	return adapter, ok
}

// All returns the adapters in registration order.
func (r *Registry) All() []providerdomain.Adapter {
	out := make([]providerdomain.Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}
