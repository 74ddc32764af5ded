package autoload

import (
	"reflect"
	"sync"
)

// Handler resolves a type name to the file declaring it.
type Handler interface {
	Resolve(name string) (path string, found bool, err error)
}

// HandlerFunc adapts a function to Handler. Function handlers cannot be
// compared, so they can only be removed through the func returned by
// Register.
type HandlerFunc func(name string) (string, bool, error)

func (f HandlerFunc) Resolve(name string) (string, bool, error) { return f(name) }

// Registry is an ordered chain of handlers consulted until one of them
// resolves a name.
type Registry struct {
	mu       sync.Mutex
	handlers []*entry
}

type entry struct {
	h Handler
}

// DefaultRegistry is the process-wide chain used by the package-level
// Register, Unregister and Resolve.
var DefaultRegistry = &Registry{}

// Register appends h to the chain and returns a func removing exactly this
// registration. Registering a handler already present is a no-op; the
// returned func then removes the existing registration.
func (r *Registry) Register(h Handler) (unregister func()) {
	if h == nil {
		return func() {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.handlers {
		if sameHandler(e.h, h) {
			return func() { r.remove(e) }
		}
	}
	e := &entry{h: h}
	r.handlers = append(r.handlers, e)
	return func() { r.remove(e) }
}

// Unregister removes h and reports whether it was registered.
func (r *Registry) Unregister(h Handler) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.handlers {
		if sameHandler(e.h, h) {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) remove(target *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.handlers {
		if e == target {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns the registered handlers in order.
func (r *Registry) Handlers() []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Handler, len(r.handlers))
	for i, e := range r.handlers {
		out[i] = e.h
	}
	return out
}

// Resolve asks each handler in registration order. The first hit wins; the
// first error stops the chain.
func (r *Registry) Resolve(name string) (string, bool, error) {
	for _, h := range r.Handlers() {
		path, found, err := h.Resolve(name)
		if err != nil {
			return "", false, err
		}
		if found {
			return path, true, nil
		}
	}
	return "", false, nil
}

// Register adds h to DefaultRegistry.
func Register(h Handler) (unregister func()) { return DefaultRegistry.Register(h) }

// Unregister removes h from DefaultRegistry.
func Unregister(h Handler) bool { return DefaultRegistry.Unregister(h) }

// Resolve resolves name through DefaultRegistry.
func Resolve(name string) (string, bool, error) { return DefaultRegistry.Resolve(name) }

func sameHandler(a, b Handler) bool {
	if a == nil || b == nil {
		return false
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}
