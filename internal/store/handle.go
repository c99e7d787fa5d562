package store

import "github.com/standardbeagle/gcbuild/internal/identity"

// LibraryHandle is the type-erased view of one
// LibraryDeduplicationStorage[V] that the cross-library duplication
// coordinator (specialization.go) needs. Every library in this engine
// is keyed by the same plain string (ConfigItemId.Key already is one),
// so a single non-generic interface can cross every library's V
// boundary without reflection — mirroring the teacher's own boxed-
// registry pattern (internal/binder.Registry) for crossing a generic
// boundary through an interface instead of type assertions.
type LibraryHandle interface {
	ItemType() string
	Keys() []string
	Has(key string) bool
	References(key string) ([]identity.ConfigItemId, bool)
	ActiveIndices(pairs []identity.ExperimentVariantPair) []identity.ConfigPatchIndex
	PairIndex(pair identity.ExperimentVariantPair) (identity.ConfigPatchIndex, bool)
	// DirectOverrideReferences returns the reference set and owning
	// pair of key's latest active directly-patched override, if any.
	DirectOverrideReferences(key string, active []identity.ConfigPatchIndex) (refs []identity.ConfigItemId, pair identity.ExperimentVariantPair, ok bool)
	DuplicateIndirect(pair identity.ExperimentVariantPair, key string) error
	// CloneOwnedValue clones key's baseline item for a "None" ownership
	// Specialization's exclusively-owned map, without touching the
	// shared store.
	CloneOwnedValue(key string) (any, error)
	// TryGetItemAny is TryGetItem boxed as any, for callers (a
	// Specialization resolving across every library's V boundary) that
	// can't be generic over V themselves.
	TryGetItemAny(key string, active []identity.ConfigPatchIndex) (any, bool)
}

// handle adapts a *LibraryDeduplicationStorage[V] to LibraryHandle.
type handle[V any] struct {
	store *LibraryDeduplicationStorage[V]
}

// NewHandle boxes store behind the LibraryHandle interface so it can be
// registered with a TopLevelDeduplicationStorage alongside libraries of
// other item types.
func NewHandle[V any](store *LibraryDeduplicationStorage[V]) LibraryHandle {
	return &handle[V]{store: store}
}

func (h *handle[V]) ItemType() string { return h.store.ItemTypeName }

func (h *handle[V]) Keys() []string { return h.store.Order() }

func (h *handle[V]) Has(key string) bool {
	_, ok := h.store.entries[key]
	return ok
}

func (h *handle[V]) References(key string) ([]identity.ConfigItemId, bool) {
	entry, ok := h.store.entries[key]
	if !ok || entry.Baseline == nil {
		return nil, false
	}
	return entry.Baseline.References, true
}

func (h *handle[V]) ActiveIndices(pairs []identity.ExperimentVariantPair) []identity.ConfigPatchIndex {
	return h.store.ActiveIndices(pairs)
}

func (h *handle[V]) PairIndex(pair identity.ExperimentVariantPair) (identity.ConfigPatchIndex, bool) {
	return h.store.IndexOf(pair)
}

func (h *handle[V]) DirectOverrideReferences(key string, active []identity.ConfigPatchIndex) ([]identity.ConfigItemId, identity.ExperimentVariantPair, bool) {
	entry, ok := h.store.entries[key]
	if !ok {
		return nil, identity.ExperimentVariantPair{}, false
	}
	activeSet := make(map[identity.ConfigPatchIndex]struct{}, len(active))
	for _, idx := range active {
		activeSet[idx] = struct{}{}
	}
	o, ok := entry.latestMatching(activeSet, true)
	if !ok {
		return nil, identity.ExperimentVariantPair{}, false
	}
	return o.Data.References, h.store.patchIndexToID[o.PatchIndex], true
}

func (h *handle[V]) DuplicateIndirect(pair identity.ExperimentVariantPair, key string) error {
	return h.store.DuplicateIndirect(pair, key)
}

func (h *handle[V]) CloneOwnedValue(key string) (any, error) {
	return h.store.CloneBaselineValue(key)
}

func (h *handle[V]) TryGetItemAny(key string, active []identity.ConfigPatchIndex) (any, bool) {
	return h.store.TryGetItem(key, active)
}
