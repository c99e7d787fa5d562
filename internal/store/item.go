// Package store implements the deduplicating runtime storage (spec.md
// §4.8/§4.9): a per-library, content-addressed store in which each
// config item exists once per distinct baseline-or-patch definition,
// plus the reference-driven duplication algorithm that decides when a
// specialization needs its own clone of an otherwise-shared item.
// Grounded on the teacher's file_content_store.go (internal/core): an
// immutable base snapshot with a small override layer on top, here
// specialized to a strictly single-threaded construction model since
// spec.md §5 requires dedup storage construction to be single-threaded.
package store

import "github.com/standardbeagle/gcbuild/internal/identity"

// ItemData is one item's bound value plus the set of other items it
// references (spec.md §3). References is computed once, when the item
// enters the store, via the owning library's ReferenceExtractor.
type ItemData[V any] struct {
	Item       V
	References []identity.ConfigItemId
}

// ReferenceExtractor computes the ConfigItemIds a bound item
// transitively references (spec.md §4.9's "referencesFromThisItem"),
// already canonicalized to the basemost item type and alias-resolved —
// canonicalization happens in the caller that supplies the extractor,
// since only the binder's registry knows how to resolve a
// valueparser.Ref to its basemost type.
type ReferenceExtractor[V any] func(item V) []identity.ConfigItemId

// PatchOverride is one patch's value for a key, alongside whether the
// patch defined it directly or it was cloned to satisfy reference
// consistency (spec.md §3).
type PatchOverride[V any] struct {
	PatchIndex        identity.ConfigPatchIndex
	Data              ItemData[V]
	IsDirectlyPatched bool
}

// PatchedItemEntry is the per-key dedup record: an optional baseline
// (nil if the key is patch-appended) plus every patch override created
// for it so far, in insertion order.
type PatchedItemEntry[V any] struct {
	Baseline  *ItemData[V]
	Overrides []PatchOverride[V]
}

// latestMatching scans Overrides from the end for the most recently
// inserted override of the requested kind (direct or indirect) whose
// PatchIndex is in active — spec.md §4.8's "latest... allows a
// subsequent patch to override an earlier one's replacement
// deterministically".
func (e *PatchedItemEntry[V]) latestMatching(active map[identity.ConfigPatchIndex]struct{}, direct bool) (PatchOverride[V], bool) {
	for i := len(e.Overrides) - 1; i >= 0; i-- {
		o := e.Overrides[i]
		if o.IsDirectlyPatched != direct {
			continue
		}
		if _, ok := active[o.PatchIndex]; ok {
			return o, true
		}
	}
	return PatchOverride[V]{}, false
}

// PatchInfo summarizes, for one ConfigPatchIndex within one library,
// whether it directly patches at least one key, indirectly patches at
// least one key (a duplication clone was created under it), or
// appended at least one new key (spec.md §3 DeduplicationStorage).
type PatchInfo struct {
	DirectlyPatched   bool
	IndirectlyPatched bool
	Appended          bool
}
