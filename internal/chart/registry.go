package chart

import "github.com/google/uuid"

// Handle is the server side record of a chart instance attached to a page
// container. A handle keeps its ID across resizes; only Replace creates a new
// one.
type Handle struct {
	ID        string
	Container string
	Revision  int
	Height    int
	Resizes   int
}

// Registry maps container IDs to the chart handle attached to them.
// It holds at most one handle per container.
//
// Registry is not safe for concurrent use; it is owned by a single view loop.
type Registry struct {
	handles   map[string]*Handle
	revisions map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles:   make(map[string]*Handle),
		revisions: make(map[string]int),
	}
}

// Replace attaches a fresh handle to container, dropping the previous one.
func (r *Registry) Replace(container string, height int) *Handle {
	r.revisions[container]++
	h := &Handle{
		ID:        uuid.NewString(),
		Container: container,
		Revision:  r.revisions[container],
		Height:    height,
	}
	r.handles[container] = h
	return h
}

// Lookup returns the handle attached to container.
func (r *Registry) Lookup(container string) (*Handle, bool) {
	h, ok := r.handles[container]
	return h, ok
}

// Resize records an in-place resize of the handle attached to container.
// It returns false when the container has no chart yet.
func (r *Registry) Resize(container string) (*Handle, bool) {
	h, ok := r.handles[container]
	if !ok {
		return nil, false
	}
	h.Resizes++
	return h, true
}

// Len returns the number of containers with an attached chart.
func (r *Registry) Len() int {
	return len(r.handles)
}
