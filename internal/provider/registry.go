package provider

import "sync"

// Registry manages available contact-data providers.
type Registry struct {
	mu      sync.RWMutex
	finders map[string]Finder
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		finders: make(map[string]Finder),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(f Finder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finders[f.Name()] = f
}

// Get returns a provider by name, or nil if not found.
func (r *Registry) Get(name string) Finder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finders[name]
}

// List returns registered provider names in canonical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.finders))
	for _, name := range Order {
		if _, ok := r.finders[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
