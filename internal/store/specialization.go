package store

import "github.com/standardbeagle/gcbuild/internal/identity"

// Ownership names which duplication action BuildSpecialization takes
// for a non-directly-patched item in the closure (spec.md §4.9's
// "Duplication action per ownership"; the table's third tier,
// Baseline, is unreachable here since baseline can't indirectly patch
// itself).
type Ownership int

const (
	// OwnershipSinglePatch is the action taken while the dedup store is
	// first being constructed, one active patch at a time: the clone is
	// written into that patch's own override slot in the shared
	// per-library store, where it is found and reused by every other
	// specialization that also activates that one patch.
	OwnershipSinglePatch Ownership = iota
	// OwnershipNone is the action taken for a standalone specialization
	// built from more than one simultaneously active patch: the clone
	// is exclusively owned by this Specialization's Owned map alone, so
	// a different combination that happens to include only one of
	// these patches never sees it.
	OwnershipNone
)

// Specialization is the duplication plan for one materialized config
// combining the baseline with a specific set of active experiment
// variants (spec.md §4.9). Shared (SinglePatch-owned) clones stay in
// each library's LibraryDeduplicationStorage, already placed into the
// right override slot by DuplicateIndirect; Owned holds the clones
// built exclusively for this Specialization (OwnershipNone) and is nil
// when none were needed. Duplicated records every item
// BuildSpecialization decided needed a clone, regardless of which map
// it ended up in.
type Specialization struct {
	ActivePatches []identity.ExperimentVariantPair
	Duplicated    map[identity.ConfigItemId]struct{}
	Owned         map[identity.ConfigItemId]any
}

// TryGetItem resolves id within this specialization: an exclusively-
// owned clone takes precedence over the library's shared dedup store,
// the same way a directly-patched override takes precedence over an
// indirectly-patched one inside LibraryDeduplicationStorage.TryGetItem
// (spec.md §4.8). Every Specialization, regardless of Ownership, can
// resolve items this way — OwnershipSinglePatch ones simply never
// populate Owned, so every lookup falls through to the shared store.
func (s *Specialization) TryGetItem(top *TopLevelDeduplicationStorage, id identity.ConfigItemId) (any, bool) {
	if v, ok := s.Owned[id]; ok {
		return v, true
	}
	lib, ok := top.Library(id.ItemType)
	if !ok {
		return nil, false
	}
	return lib.TryGetItemAny(id.Key, lib.ActiveIndices(s.ActivePatches))
}

// BuildSpecialization computes and performs the duplication set for
// activePatches against top (spec.md §4.9):
//
//  1. Classify every item directly patched by an active pair as
//     root-to-duplicate when either (a) a baseline-defined item
//     references it ("baselineRefersToPatch": the baseline item would
//     otherwise keep pointing at the pre-patch target) or (b) it
//     references another directly-patched item owned by a *different*
//     active pair ("patchRefersToDifferentPatch": two patches disagree
//     about what this chain should look like).
//  2. Expand that root set to its closure under the specialization's
//     reverse-reference graph: anything that (transitively) references
//     a root-to-duplicate item must itself be duplicated too, or its
//     reference would keep resolving to the shared baseline instance.
//  3. For every item in the closure that isn't already directly
//     patched, perform ownership's duplication action: OwnershipNone
//     clones into this Specialization's own Owned map, OwnershipSinglePatch
//     clones into the item's shared per-library override slot under
//     the one active pair (there can only be one, since a multi-pair
//     activePatches set must use OwnershipNone instead — mixing shared
//     storage with more than one simultaneously active patch is
//     exactly the sharing bug this ownership split exists to prevent).
func BuildSpecialization(top *TopLevelDeduplicationStorage, activePatches []identity.ExperimentVariantPair, ownership Ownership) (*Specialization, error) {
	roots, directPairOf := rootsToDuplicate(top, activePatches)
	duplicated := closureOverReverseReferences(top, activePatches, roots)

	var owned map[identity.ConfigItemId]any
	if ownership == OwnershipNone {
		owned = make(map[identity.ConfigItemId]any, len(duplicated))
	}

	for id := range duplicated {
		if _, alreadyDirect := directPairOf[id]; alreadyDirect {
			continue
		}
		lib, ok := top.Library(id.ItemType)
		if !ok {
			continue
		}

		if ownership == OwnershipNone {
			v, err := lib.CloneOwnedValue(id.Key)
			if err != nil {
				return nil, err
			}
			owned[id] = v
			continue
		}

		pair, ok := firstActivePairFor(lib, activePatches)
		if !ok {
			continue
		}
		if err := lib.DuplicateIndirect(pair, id.Key); err != nil {
			return nil, err
		}
	}

	return &Specialization{ActivePatches: activePatches, Duplicated: duplicated, Owned: owned}, nil
}

// rootsToDuplicate scans the directly-patched items of every library
// under activePatches and applies spec.md §4.9's two classification
// conditions. It also returns directPairOf, the owning pair of every
// directly-patched item, which BuildSpecialization uses; the reverse-
// reference override computation does not take it.
func rootsToDuplicate(
	top *TopLevelDeduplicationStorage,
	activePatches []identity.ExperimentVariantPair,
) (map[identity.ConfigItemId]struct{}, map[identity.ConfigItemId]identity.ExperimentVariantPair) {
	roots := make(map[identity.ConfigItemId]struct{})
	directPairOf := make(map[identity.ConfigItemId]identity.ExperimentVariantPair)
	directRefsOf := make(map[identity.ConfigItemId][]identity.ConfigItemId)

	for itemType, lib := range top.Libraries() {
		active := lib.ActiveIndices(activePatches)
		if len(active) == 0 {
			continue
		}
		for _, key := range lib.Keys() {
			refs, pair, ok := lib.DirectOverrideReferences(key, active)
			if !ok {
				continue
			}
			id := identity.ConfigItemId{ItemType: itemType, Key: key}
			directPairOf[id] = pair
			directRefsOf[id] = refs
		}
	}

	// patchRefersToDifferentPatch: source and target are both directly
	// patched in this specialization, by different pairs.
	for src, refs := range directRefsOf {
		for _, target := range refs {
			if targetPair, ok := directPairOf[target]; ok && targetPair != directPairOf[src] {
				roots[src] = struct{}{}
			}
		}
	}

	// baselineRefersToPatch: a baseline-defined (not itself directly
	// patched) source's baseline reference set names a directly-patched
	// target.
	for target := range directPairOf {
		for _, src := range top.ReverseReferences(target) {
			if _, srcIsDirect := directPairOf[src]; srcIsDirect {
				continue
			}
			roots[src] = struct{}{}
		}
	}

	return roots, directPairOf
}

// closureOverReverseReferences expands roots to every item that
// transitively references a root, via the lazy reverse-reference
// override of spec.md §4.9: most items keep their baseline reverse-
// referrer set, but any target whose incoming edges changed because a
// directly-patched item's reference set diverged from baseline gets an
// adjusted one.
func closureOverReverseReferences(
	top *TopLevelDeduplicationStorage,
	activePatches []identity.ExperimentVariantPair,
	roots map[identity.ConfigItemId]struct{},
) map[identity.ConfigItemId]struct{} {
	overrideReverse := buildReverseOverrides(top, activePatches)

	duplicated := make(map[identity.ConfigItemId]struct{}, len(roots))
	queue := make([]identity.ConfigItemId, 0, len(roots))
	for id := range roots {
		duplicated[id] = struct{}{}
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		var referrers []identity.ConfigItemId
		if overridden, ok := overrideReverse[id]; ok {
			for r := range overridden {
				referrers = append(referrers, r)
			}
		} else {
			referrers = top.ReverseReferences(id)
		}

		for _, r := range referrers {
			if _, seen := duplicated[r]; seen {
				continue
			}
			duplicated[r] = struct{}{}
			queue = append(queue, r)
		}
	}
	return duplicated
}

// buildReverseOverrides computes, lazily and only for targets whose
// incoming edges differ from baseline, this specialization's actual
// reverse-referrer set: the baseline referrers, with any directly-
// patched source removed from targets it stopped referencing and added
// to targets it newly references.
func buildReverseOverrides(
	top *TopLevelDeduplicationStorage,
	activePatches []identity.ExperimentVariantPair,
) map[identity.ConfigItemId]map[identity.ConfigItemId]struct{} {
	overrides := make(map[identity.ConfigItemId]map[identity.ConfigItemId]struct{})
	touch := func(target identity.ConfigItemId) map[identity.ConfigItemId]struct{} {
		if s, ok := overrides[target]; ok {
			return s
		}
		s := make(map[identity.ConfigItemId]struct{})
		for _, src := range top.ReverseReferences(target) {
			s[src] = struct{}{}
		}
		overrides[target] = s
		return s
	}

	for itemType, lib := range top.Libraries() {
		active := lib.ActiveIndices(activePatches)
		if len(active) == 0 {
			continue
		}
		for _, key := range lib.Keys() {
			newRefs, _, ok := lib.DirectOverrideReferences(key, active)
			if !ok {
				continue
			}
			src := identity.ConfigItemId{ItemType: itemType, Key: key}
			newSet := make(map[identity.ConfigItemId]struct{}, len(newRefs))
			for _, target := range newRefs {
				newSet[target] = struct{}{}
			}
			for _, target := range top.References(src) {
				if _, stillThere := newSet[target]; !stillThere {
					delete(touch(target), src)
				}
			}
			for target := range newSet {
				touch(target)[src] = struct{}{}
			}
		}
	}
	return overrides
}

// firstActivePairFor picks, among activePatches, the first one this
// library actually has an assigned index for — the pair whose view of
// the world a purely-reverse-closure duplicate (one that isn't itself
// directly patched) should be cloned under.
func firstActivePairFor(lib LibraryHandle, activePatches []identity.ExperimentVariantPair) (identity.ExperimentVariantPair, bool) {
	for _, p := range activePatches {
		if _, ok := lib.PairIndex(p); ok {
			return p, true
		}
	}
	return identity.ExperimentVariantPair{}, false
}
