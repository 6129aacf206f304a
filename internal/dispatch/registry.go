package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry resolution failures. ErrHandlerNotFound means the operation is
// unknown entirely; ErrTransportNotSupported means the operation exists
// but has no handler for the requested transport.
var (
	ErrHandlerNotFound       = errors.New("handler not found")
	ErrTransportNotSupported = errors.New("transport not supported")
)

// Registry maps (operation, transport) pairs to handler factories. It is
// populated once at startup; the lock keeps dynamic registration safe
// should it ever happen at runtime.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]map[string]HandlerFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]map[string]HandlerFactory)}
}

// Register binds a factory to the (operation, transport) pair. A second
// registration for the same pair silently replaces the first.
func (r *Registry) Register(operation, transport string, factory HandlerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byTransport, ok := r.factories[operation]
	if !ok {
		byTransport = make(map[string]HandlerFactory)
		r.factories[operation] = byTransport
	}
	byTransport[transport] = factory
}

// Resolve returns a fresh handler instance for the pair. Construction is
// cheap and uncached so handlers never share state across requests.
func (r *Registry) Resolve(operation, transport string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byTransport, ok := r.factories[operation]
	if !ok {
		return nil, fmt.Errorf("%w: no handler registered for operation %q", ErrHandlerNotFound, operation)
	}
	factory, ok := byTransport[transport]
	if !ok {
		return nil, fmt.Errorf("%w: operation %q has no handler for transport %q (available: %s)",
			ErrTransportNotSupported, operation, transport, strings.Join(sortedKeys(byTransport), ", "))
	}
	return factory(), nil
}

// Supports reports whether the pair has a registration.
func (r *Registry) Supports(operation, transport string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[operation][transport]
	return ok
}

// Operations lists every registered operation with its transports sorted.
func (r *Registry) Operations() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.factories))
	for operation, byTransport := range r.factories {
		out[operation] = sortedKeys(byTransport)
	}
	return out
}

func sortedKeys(m map[string]HandlerFactory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
