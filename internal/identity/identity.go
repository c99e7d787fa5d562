// Package identity defines the small set of identity types threaded
// through the patch model and deduplicating store (spec.md §3):
// ConfigItemId, ExperimentVariantPair, and ConfigPatchIndex.
package identity

import "fmt"

// ConfigItemId identifies one config item, canonicalized to the
// basemost library item type in which its key is resolvable and to its
// real (alias-resolved) key — two items with the same ConfigItemId are
// always the same item, regardless of which alias was used to look it
// up or which subtype the library was declared with.
type ConfigItemId struct {
	ItemType string
	Key      string
}

func (id ConfigItemId) String() string {
	return fmt.Sprintf("%s:%s", id.ItemType, id.Key)
}

// ExperimentVariantPair identifies one patch: an experiment and the
// variant branch within it.
type ExperimentVariantPair struct {
	ExperimentID string
	VariantID    string
}

func (p ExperimentVariantPair) String() string {
	return fmt.Sprintf("%s/%s", p.ExperimentID, p.VariantID)
}

// ConfigPatchIndex is a compact non-negative integer assigned to each
// patch within one library's deduplication storage, used as the active-
// patch-set element instead of the full ExperimentVariantPair on every
// hot-path lookup.
type ConfigPatchIndex int32

// NoPatch is the sentinel ConfigPatchIndex meaning "no patch"; it is
// never an assigned slot, so Valid reports false for it.
const NoPatch ConfigPatchIndex = -1

// Valid reports whether idx refers to an actual assigned patch slot.
func (idx ConfigPatchIndex) Valid() bool { return idx >= 0 }
