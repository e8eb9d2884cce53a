package contexts

import (
	"slices"

	"github.com/go-drift/hostkit/pkg/controller"
)

// listener is a connected consumer. retry re-resolves it and reports whether
// it moved to a different provider; waiting reports whether it has none.
type listener interface {
	retry() bool
	waiting() bool
}

// Registry tracks the connected consumers of a tree, keyed by context name.
// Providers announce themselves when they connect; consumers without a
// provider resolve and resolved consumers move to the new provider if it is
// nearer. Like hosts, a Registry must only be used from the loop goroutine.
type Registry struct {
	listeners map[string][]listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{listeners: make(map[string][]listener)}
}

// RegistrySource is implemented by hosts that expose the registry of the tree
// they belong to.
type RegistrySource interface {
	ContextRegistry() *Registry
}

// registryFor returns the nearest registry on the way up from h.
func registryFor(h controller.Host) *Registry {
	for ; h != nil; h = controller.ParentOf(h) {
		if src, ok := h.(RegistrySource); ok {
			if r := src.ContextRegistry(); r != nil {
				return r
			}
		}
	}
	return nil
}

func (r *Registry) add(name string, l listener) {
	if slices.Contains(r.listeners[name], l) {
		return
	}
	r.listeners[name] = append(r.listeners[name], l)
}

func (r *Registry) remove(name string, l listener) {
	ls := r.listeners[name]
	i := slices.Index(ls, l)
	if i < 0 {
		return
	}
	ls = slices.Delete(ls, i, i+1)
	if len(ls) == 0 {
		delete(r.listeners, name)
		return
	}
	r.listeners[name] = ls
}

// Announce makes every consumer of name re-resolve, in the order they
// connected, and returns how many switched to a different provider.
func (r *Registry) Announce(name string) int {
	switched := 0
	for _, l := range slices.Clone(r.listeners[name]) {
		if l.retry() {
			switched++
		}
	}
	return switched
}

// Pending returns the number of connected consumers of name that have no
// provider.
func (r *Registry) Pending(name string) int {
	n := 0
	for _, l := range r.listeners[name] {
		if l.waiting() {
			n++
		}
	}
	return n
}

// Listeners returns the number of connected consumers of name.
func (r *Registry) Listeners(name string) int {
	return len(r.listeners[name])
}
