package component

import "sync"

// RenderTarget collects the components that must be re-rendered in the current response.
// Adding a component twice keeps its first position.
type RenderTarget struct {
	components []Component
	seen       map[string]bool
}

// NewRenderTarget creates an empty target
func NewRenderTarget() *RenderTarget {
	return &RenderTarget{seen: make(map[string]bool)}
}

// Add marks components dirty
func (t *RenderTarget) Add(components ...Component) {
	for _, c := range components {
		if c == nil || t.seen[c.MarkupID()] {
			continue
		}
		t.seen[c.MarkupID()] = true
		t.components = append(t.components, c)
	}
}

// Components returns the dirty components in the order they were added
func (t *RenderTarget) Components() []Component {
	return append([]Component(nil), t.components...)
}

// Len returns the number of dirty components
func (t *RenderTarget) Len() int {
	return len(t.components)
}

// Contains reports whether a component with the given markup id is dirty
func (t *RenderTarget) Contains(markupID string) bool {
	return t.seen[markupID]
}

// Registry maps ids to top-level components of one session
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Component)}
}

// Register adds or replaces a component under its id
func (r *Registry) Register(c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[c.ID()] = c
}

// Lookup returns the component registered under id
func (r *Registry) Lookup(id string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[id]
	return c, ok
}

// Remove drops the component registered under id
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.components, id)
}
