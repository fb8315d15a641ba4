package supplier

import "sync"

// Registry holds the configured supplier adapters and answers routing
// questions for the orchestrator. Registration happens at startup; lookups
// are concurrent.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Adapter)}
}

// Register adds an adapter. A later registration with the same name replaces
// the earlier one.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[a.Name()]; exists {
		for i, existing := range r.adapters {
			if existing.Name() == a.Name() {
				r.adapters[i] = a
				break
			}
		}
	} else {
		r.adapters = append(r.adapters, a)
	}
	r.byName[a.Name()] = a
}

// ForRequest returns the adapters applicable to the request: market must be
// supported, and NDC-only requests go to NDC-capable adapters only.
func (r *Registry) ForRequest(req Request) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	applicable := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		caps := a.Capabilities()
		if !caps.SupportsMarket(req.Market) {
			continue
		}
		if req.NDCOnly && !caps.NDC {
			continue
		}
		applicable = append(applicable, a)
	}
	return applicable
}

// ByName returns the adapter with the given supplier id.
func (r *Registry) ByName(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Names returns the ids of all registered adapters in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Name())
	}
	return names
}
