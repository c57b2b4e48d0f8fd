// Package registry maps discovered class names to runnable test units.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/conductor-ci/conductor/types"
)

// Factory builds a fresh TestUnit instance. The runner instantiates a new
// unit per run so state never leaks between runs.
type Factory func() types.TestUnit

// Registry manages test unit factories keyed by class name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register binds a class name to its unit factory. Registering the same
// class twice is a programming error.
func (r *Registry) Register(className string, factory Factory) error {
	if className == "" {
		return fmt.Errorf("class name is required")
	}
	if factory == nil {
		return fmt.Errorf("factory is required for class %q", className)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[className]; exists {
		return fmt.Errorf("class %q is already registered", className)
	}
	r.factories[className] = factory
	return nil
}

// Resolve returns the factory for a class name, if registered.
func (r *Registry) Resolve(className string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[className]
	return factory, ok
}

// ClassNames returns the registered class names in lexicographic order.
func (r *Registry) ClassNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the CLI.
func Default() *Registry {
	return defaultRegistry
}

// Register binds a class name to a factory in the default registry. It
// panics on duplicate registration so init-time wiring mistakes surface
// immediately.
func Register(className string, factory Factory) {
	if err := defaultRegistry.Register(className, factory); err != nil {
		panic(err)
	}
}
