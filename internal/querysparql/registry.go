package querysparql

import (
	"sync"

	"github.com/roach88/wikisparql/internal/queryir"
)

// Registry maps description kinds to condition builders.
//
// Registration is first-wins: a kind keeps the builder registered first
// until Clear. Find returns the fallback builder for nil descriptions and
// for kinds without a builder that can handle them.
//
// Thread-safety: a Registry is safe for concurrent use. Writers take the
// write lock; Find only takes the read lock.
type Registry struct {
	mu       sync.RWMutex
	builders map[queryir.Kind]ConditionBuilder
	fallback ConditionBuilder
	defaults bool
}

// NewRegistry creates a registry holding only the fallback builder.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[queryir.Kind]ConditionBuilder),
		fallback: ThingConditionBuilder{},
	}
}

// WithDefaultStrategies creates a registry with the builders for every
// description variant.
func WithDefaultStrategies() *Registry {
	r := NewRegistry()
	r.defaults = true
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.builders[queryir.KindThing] = ThingConditionBuilder{}
	r.builders[queryir.KindValue] = ValueConditionBuilder{}
	r.builders[queryir.KindSomeProperty] = PropertyConditionBuilder{}
	r.builders[queryir.KindClass] = ClassConditionBuilder{}
	r.builders[queryir.KindNamespace] = NamespaceConditionBuilder{}
	r.builders[queryir.KindConcept] = ConceptConditionBuilder{}
	r.builders[queryir.KindConjunction] = ConjunctionConditionBuilder{}
	r.builders[queryir.KindDisjunction] = DisjunctionConditionBuilder{}
}

// Register adds a builder for kind. It returns false, leaving the registry
// unchanged, when kind already has a builder.
func (r *Registry) Register(kind queryir.Kind, cb ConditionBuilder) bool {
	if cb == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[kind]; exists {
		return false
	}
	r.builders[kind] = cb
	return true
}

// Find returns the builder for d.
func (r *Registry) Find(d queryir.Description) ConditionBuilder {
	d = queryir.Unwrap(d)
	if d == nil {
		return r.fallback
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cb, ok := r.builders[d.Kind()]; ok && cb.CanHandle(d) {
		return cb
	}
	return r.fallback
}

// Fallback returns the builder used when no registered builder applies.
func (r *Registry) Fallback() ConditionBuilder {
	return r.fallback
}

// Clear removes every registration. A registry created by
// WithDefaultStrategies gets its default builders back.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.builders = make(map[queryir.Kind]ConditionBuilder)
	if r.defaults {
		r.registerDefaults()
	}
}

// Len returns the number of registered builders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builders)
}
