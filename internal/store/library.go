package store

import (
	"fmt"

	"github.com/standardbeagle/gcbuild/internal/identity"
)

// LibraryDeduplicationStorage is the per-library dedup store (spec.md
// §3's DeduplicationStorage, specialized to V): baseline items keyed by
// their real string key (already alias-resolved — ConfigItemId.Key is a
// plain string, so every library in this engine is keyed uniformly),
// plus the patch overrides layered on top of them.
//
// Construction (LoadBaseline/ApplyReplace/ApplyAppend/DuplicateIndirect)
// is single-threaded per spec.md §5; TryGetItem is safe to call
// concurrently once construction has finished, since it only reads.
type LibraryDeduplicationStorage[V any] struct {
	ItemTypeName string
	extractRefs  ReferenceExtractor[V]

	order   []string
	entries map[string]*PatchedItemEntry[V]

	patchIDToIndex map[identity.ExperimentVariantPair]identity.ConfigPatchIndex
	patchIndexToID []identity.ExperimentVariantPair
	patchInfos     []PatchInfo
}

// NewLibraryDeduplicationStorage creates an empty store for one library
// item type. extractRefs is called once per item, at load or patch
// time, to precompute its reference set.
func NewLibraryDeduplicationStorage[V any](itemType string, extractRefs ReferenceExtractor[V]) *LibraryDeduplicationStorage[V] {
	return &LibraryDeduplicationStorage[V]{
		ItemTypeName:   itemType,
		extractRefs:    extractRefs,
		entries:        make(map[string]*PatchedItemEntry[V]),
		patchIDToIndex: make(map[identity.ExperimentVariantPair]identity.ConfigPatchIndex),
	}
}

// DuplicateBaselineKeyError reports a second LoadBaseline call for a key
// already loaded.
type DuplicateBaselineKeyError struct{ Key string }

func (e *DuplicateBaselineKeyError) Error() string {
	return fmt.Sprintf("store: duplicate baseline key %q", e.Key)
}

// MissingReplaceTargetError reports a LibraryPatch replaced-entry whose
// key has no baseline item to replace.
type MissingReplaceTargetError struct{ Key string }

func (e *MissingReplaceTargetError) Error() string {
	return fmt.Sprintf("store: replacement key %q not found in baseline", e.Key)
}

// MissingBaselineError reports a duplication request for a key with no
// baseline item to clone.
type MissingBaselineError struct{ Key string }

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("store: no baseline item for key %q to duplicate", e.Key)
}

// LoadBaseline registers key's baseline value, computing its reference
// set via the library's ReferenceExtractor. Called once per key during
// baseline import; baseline items are immutable afterward (spec.md §3
// Lifecycles).
func (s *LibraryDeduplicationStorage[V]) LoadBaseline(key string, item V) error {
	if _, exists := s.entries[key]; exists {
		return &DuplicateBaselineKeyError{Key: key}
	}
	data := ItemData[V]{Item: item, References: s.extractRefs(item)}
	s.entries[key] = &PatchedItemEntry[V]{Baseline: &data}
	s.order = append(s.order, key)
	return nil
}

// AssignPatchIndex returns pair's ConfigPatchIndex within this library,
// assigning the next compact index the first time pair is seen by this
// library (a pair unseen by a library simply never touches it).
func (s *LibraryDeduplicationStorage[V]) AssignPatchIndex(pair identity.ExperimentVariantPair) identity.ConfigPatchIndex {
	if idx, ok := s.patchIDToIndex[pair]; ok {
		return idx
	}
	idx := identity.ConfigPatchIndex(len(s.patchIndexToID))
	s.patchIDToIndex[pair] = idx
	s.patchIndexToID = append(s.patchIndexToID, pair)
	s.patchInfos = append(s.patchInfos, PatchInfo{})
	return idx
}

// IndexOf returns pair's assigned index, if this library has ever seen
// a patch for it.
func (s *LibraryDeduplicationStorage[V]) IndexOf(pair identity.ExperimentVariantPair) (identity.ConfigPatchIndex, bool) {
	idx, ok := s.patchIDToIndex[pair]
	return idx, ok
}

// ActiveIndices translates a specialization's experiment-wide active
// pair set into this library's own compact index space, dropping pairs
// this library has never assigned an index to.
func (s *LibraryDeduplicationStorage[V]) ActiveIndices(pairs []identity.ExperimentVariantPair) []identity.ConfigPatchIndex {
	var out []identity.ConfigPatchIndex
	for _, p := range pairs {
		if idx, ok := s.patchIDToIndex[p]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// ApplyReplace registers a direct-patch override for an existing
// baseline key (spec.md §4.2's LibraryPatch.replaced entries).
func (s *LibraryDeduplicationStorage[V]) ApplyReplace(pair identity.ExperimentVariantPair, key string, value V) error {
	entry, ok := s.entries[key]
	if !ok || entry.Baseline == nil {
		return &MissingReplaceTargetError{Key: key}
	}
	idx := s.AssignPatchIndex(pair)
	entry.Overrides = append(entry.Overrides, PatchOverride[V]{
		PatchIndex:        idx,
		Data:              ItemData[V]{Item: value, References: s.extractRefs(value)},
		IsDirectlyPatched: true,
	})
	s.patchInfos[idx].DirectlyPatched = true
	return nil
}

// ApplyAppend registers a direct-patch override for a key the baseline
// never defined (spec.md §4.2's LibraryPatch.appended entries), giving
// it a PatchedItemEntry with a nil Baseline.
func (s *LibraryDeduplicationStorage[V]) ApplyAppend(pair identity.ExperimentVariantPair, key string, value V) {
	idx := s.AssignPatchIndex(pair)
	entry, ok := s.entries[key]
	if !ok {
		entry = &PatchedItemEntry[V]{}
		s.entries[key] = entry
		s.order = append(s.order, key)
	}
	entry.Overrides = append(entry.Overrides, PatchOverride[V]{
		PatchIndex:        idx,
		Data:              ItemData[V]{Item: value, References: s.extractRefs(value)},
		IsDirectlyPatched: true,
	})
	s.patchInfos[idx].DirectlyPatched = true
	s.patchInfos[idx].Appended = true
}

// DuplicateIndirect clones key's baseline item into pair's override
// slot, flagged as an indirectly-patched clone (spec.md §4.9) — used
// when a specialization's reference-consistency closure requires a
// stand-in for key under pair even though pair never directly patches
// key.
func (s *LibraryDeduplicationStorage[V]) DuplicateIndirect(pair identity.ExperimentVariantPair, key string) error {
	entry, ok := s.entries[key]
	if !ok || entry.Baseline == nil {
		return &MissingBaselineError{Key: key}
	}
	idx := s.AssignPatchIndex(pair)
	clone := ItemData[V]{
		Item:       entry.Baseline.Item,
		References: append([]identity.ConfigItemId(nil), entry.Baseline.References...),
	}
	entry.Overrides = append(entry.Overrides, PatchOverride[V]{
		PatchIndex:        idx,
		Data:              clone,
		IsDirectlyPatched: false,
	})
	s.patchInfos[idx].IndirectlyPatched = true
	return nil
}

// CloneBaselineValue returns key's baseline item, boxed as any, for an
// exclusively-owned specialization that must not write into this
// library's shared override slots (spec.md §4.9's "None" ownership
// tier: a standalone specialization built from more than one
// simultaneously active patch, not shared with any other
// specialization). Unlike DuplicateIndirect, the clone is handed back
// to the caller rather than appended as an override here.
func (s *LibraryDeduplicationStorage[V]) CloneBaselineValue(key string) (V, error) {
	var zero V
	entry, ok := s.entries[key]
	if !ok || entry.Baseline == nil {
		return zero, &MissingBaselineError{Key: key}
	}
	return entry.Baseline.Item, nil
}

// TryGetItem resolves key for a specialization with the given
// library-local active patch indices, per spec.md §4.8: the latest
// matching direct override wins, else the latest matching indirect
// override, else the baseline (false if key is patch-appended and no
// active patch defines it).
func (s *LibraryDeduplicationStorage[V]) TryGetItem(key string, active []identity.ConfigPatchIndex) (V, bool) {
	var zero V
	entry, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	activeSet := make(map[identity.ConfigPatchIndex]struct{}, len(active))
	for _, idx := range active {
		activeSet[idx] = struct{}{}
	}
	if o, ok := entry.latestMatching(activeSet, true); ok {
		return o.Data.Item, true
	}
	if o, ok := entry.latestMatching(activeSet, false); ok {
		return o.Data.Item, true
	}
	if entry.Baseline != nil {
		return entry.Baseline.Item, true
	}
	return zero, false
}

// Order returns every known key (baseline then patch-appended) in the
// order spec.md §5 requires for emission: sheet row order for baseline
// items, then appended items in the order of their first ApplyAppend
// call (registration order).
func (s *LibraryDeduplicationStorage[V]) Order() []string {
	return s.order
}

// Entry exposes the raw PatchedItemEntry for key, for callers (the
// specialization builder, tests) that need its override list directly
// rather than going through TryGetItem.
func (s *LibraryDeduplicationStorage[V]) Entry(key string) (*PatchedItemEntry[V], bool) {
	e, ok := s.entries[key]
	return e, ok
}
