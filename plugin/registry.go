// Package plugin keeps track of live extension objects so other parts of
// the editor can enumerate them and tear them down.
package plugin

import "sync"

// Registry holds objects registered by plugins and scripts for the duration
// of their lifetime. Registration is explicit: whoever creates an object
// adds it, whoever destroys it removes it.
type Registry struct {
	mu      sync.Mutex
	objects []any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddObject registers an object. Adding the same object twice is allowed
// and requires a matching number of removals.
func (r *Registry) AddObject(obj any) {
	if obj == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = append(r.objects, obj)
}

// RemoveObject unregisters a previously added object. Unknown objects are
// ignored.
func (r *Registry) RemoveObject(obj any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.objects {
		if o == obj {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			return
		}
	}
}

// Objects returns a snapshot of all registered objects.
func (r *Registry) Objects() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.objects))
	copy(out, r.objects)
	return out
}

// Contains reports whether the object is currently registered.
func (r *Registry) Contains(obj any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.objects {
		if o == obj {
			return true
		}
	}
	return false
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// ObjectsOf collects the registered objects of a single concrete type.
func ObjectsOf[T any](r *Registry) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []T
	for _, o := range r.objects {
		if t, ok := o.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
