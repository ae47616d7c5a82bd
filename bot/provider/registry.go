package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages registered Provider implementations in a thread-safe manner.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	// Order preserving list so annotations are gathered in registration order
	ordered []Provider
}

// NewRegistry creates a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		ordered:   make([]Provider, 0),
	}
}

// Register adds a provider to the registry.
// Returns an error if the provider is nil, has an empty name, or is already registered.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return ErrNilProvider
	}

	name := p.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, name)
	}

	r.providers[name] = p
	r.ordered = append(r.ordered, p)

	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	return p, ok
}

// GetAll returns all registered providers in registration order.
// The returned slice is a copy and safe for concurrent use.
func (r *Registry) GetAll() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Provider, 0, len(r.ordered))
	result = append(result, r.ordered...)

	return result
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		names = append(names, p.Name())
	}
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Annotate runs every registered provider over text.
// Each provider's segments keep their order; the merged list is stably sorted by Start.
// Overlapping segments from different providers are returned as-is.
func (r *Registry) Annotate(text string) []Annotation {
	return r.annotate(text, r.GetAll())
}

// AnnotateOnly is like Annotate but restricted to the named providers.
// An empty names list selects every provider. Unknown names are ignored.
func (r *Registry) AnnotateOnly(text string, names []string) []Annotation {
	if len(names) == 0 {
		return r.Annotate(text)
	}

	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}

	selected := make([]Provider, 0, len(names))
	for _, p := range r.GetAll() {
		if _, ok := allowed[p.Name()]; ok {
			selected = append(selected, p)
		}
	}
	return r.annotate(text, selected)
}

func (r *Registry) annotate(text string, providers []Provider) []Annotation {
	if text == "" || len(providers) == 0 {
		return nil
	}

	var result []Annotation
	for _, p := range providers {
		name := p.Name()
		for _, seg := range p.ParseMessage(text) {
			result = append(result, Annotation{Provider: name, InfoSegment: seg})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Start < result[j].Start
	})
	return result
}

// Reset clears all registered providers.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = make(map[string]Provider)
	r.ordered = r.ordered[:0]
}
