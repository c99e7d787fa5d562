// Package patch implements the per-entry patch model (spec.md §4.6):
// LibraryPatch and StructurePatch, their composition rules against a
// baseline Library, and the ordered serialization envelope a patch
// archive entry is packaged into.
package patch

import (
	"fmt"

	"github.com/standardbeagle/gcbuild/internal/library"
)

// ReplaceAppendConflictError reports a key registered as both replaced
// and appended within the same LibraryPatch, violating spec.md §3's
// `replaced ∩ appended = ∅` invariant.
type ReplaceAppendConflictError[K any] struct {
	Key K
}

func (e *ReplaceAppendConflictError[K]) Error() string {
	return fmt.Sprintf("key %v is both replaced and appended", e.Key)
}

// MissingReplaceTargetError reports a replacement whose key does not
// exist in the baseline it is applied to.
type MissingReplaceTargetError[K any] struct {
	Key K
}

func (e *MissingReplaceTargetError[K]) Error() string {
	return fmt.Sprintf("replacement key %v not found in baseline", e.Key)
}

// LibraryPatch holds one patch's replacements of existing baseline keys
// and appended new keys (spec.md §3).
type LibraryPatch[K comparable, V any] struct {
	replacedOrder []K
	replaced      map[K]V
	appendedOrder []K
	appended      map[K]V
}

// NewLibraryPatch returns an empty LibraryPatch.
func NewLibraryPatch[K comparable, V any]() *LibraryPatch[K, V] {
	return &LibraryPatch[K, V]{replaced: make(map[K]V), appended: make(map[K]V)}
}

// SetReplaced registers a replacement value for an existing baseline key.
func (p *LibraryPatch[K, V]) SetReplaced(key K, value V) error {
	if _, ok := p.appended[key]; ok {
		return &ReplaceAppendConflictError[K]{Key: key}
	}
	if _, exists := p.replaced[key]; !exists {
		p.replacedOrder = append(p.replacedOrder, key)
	}
	p.replaced[key] = value
	return nil
}

// SetAppended registers a new key not present in the baseline.
func (p *LibraryPatch[K, V]) SetAppended(key K, value V) error {
	if _, ok := p.replaced[key]; ok {
		return &ReplaceAppendConflictError[K]{Key: key}
	}
	if _, exists := p.appended[key]; !exists {
		p.appendedOrder = append(p.appendedOrder, key)
	}
	p.appended[key] = value
	return nil
}

// Contains reports constant-time membership in this patch's appended set.
func (p *LibraryPatch[K, V]) Contains(key K) bool {
	_, ok := p.appended[key]
	return ok
}

// Resolve returns the patch's own value for key, if it defines one
// (either as a replacement or an append), checking replacements first
// since the two sets are disjoint by construction.
func (p *LibraryPatch[K, V]) Resolve(key K) (V, bool) {
	if v, ok := p.replaced[key]; ok {
		return v, true
	}
	if v, ok := p.appended[key]; ok {
		return v, true
	}
	var zero V
	return zero, false
}

// AppendedOrder returns appended keys in registration order.
func (p *LibraryPatch[K, V]) AppendedOrder() []K {
	return p.appendedOrder
}

// Apply mutates baseline in place: every replacement must find an
// existing key (a hard MissingReplaceTargetError otherwise), then every
// appended key is added. Composing multiple patches' appends through
// Apply in patch order gives "last writer wins" for a key appended by
// more than one patch, matching spec.md §4.6.
func (p *LibraryPatch[K, V]) Apply(baseline *library.Library[K, V]) error {
	for _, key := range p.replacedOrder {
		if !baseline.Has(key) {
			return &MissingReplaceTargetError[K]{Key: key}
		}
		baseline.Set(key, p.replaced[key])
	}
	for _, key := range p.appendedOrder {
		baseline.Set(key, p.appended[key])
	}
	return nil
}

// ResolveAcrossPatches composes an ordered, active set of patches over
// baseline: later patches in activePatches take precedence, falling
// back to baseline when none of them define key. This is the read-side
// counterpart to Apply's "last writer wins by patch order" composition
// rule, used where a specialization must resolve a key without
// materializing a fully merged library (internal/store).
func ResolveAcrossPatches[K comparable, V any](baseline *library.Library[K, V], activePatches []*LibraryPatch[K, V], key K) (V, bool) {
	for i := len(activePatches) - 1; i >= 0; i-- {
		if v, ok := activePatches[i].Resolve(key); ok {
			return v, true
		}
	}
	return baseline.Get(key)
}
