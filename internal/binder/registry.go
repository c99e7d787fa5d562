// Package binder converts a post-processed syntax tree (internal/syntaxtree)
// into concrete Go values, without reflection. Per spec.md §9's redesign
// flag against reflection-based member set/get, every domain type that
// can appear as a library value or key-value structure registers a
// TypeBinding up front; binding a member is a plain map lookup and
// function call, grounded on cmmoran-apimodelgen's replacement of
// reflective struct mapping with a registered setter table
// (internal/parser/mapper.go), adapted here from static codegen to a
// runtime registration table since the domain types come from the
// calling game project rather than being generated ahead of time.
package binder

import "github.com/standardbeagle/gcbuild/internal/syntaxtree"

// FieldSetter parses one member's syntax-tree node and assigns it onto
// target, recursing through b for nested object or collection-of-object
// members.
type FieldSetter func(b *Binder, target any, node syntaxtree.Node) error

// TypeBinding is the registered shape of one domain type: how to
// construct a zero value and how to set each of its named members.
type TypeBinding struct {
	New    func() any
	Fields map[string]FieldSetter

	// DerivedBy, when non-empty, marks this binding as an abstract base:
	// the member it names is read as a scalar discriminator whose value
	// is itself a registered type name, and binding is redirected to
	// that concrete TypeBinding (spec.md §4.5 "parse-as-derived").
	DerivedBy string
}

// Registry holds the set of TypeBindings known to one Engine instance.
type Registry struct {
	bindings map[string]*TypeBinding
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]*TypeBinding)}
}

// Register adds or replaces the TypeBinding for typeName.
func (r *Registry) Register(typeName string, binding *TypeBinding) {
	r.bindings[typeName] = binding
}

// Lookup returns the TypeBinding registered for typeName, if any.
func (r *Registry) Lookup(typeName string) (*TypeBinding, bool) {
	b, ok := r.bindings[typeName]
	return b, ok
}
