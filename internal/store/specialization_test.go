package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/gcbuild/internal/identity"
)

// testItem is the small reference-carrying value every test in this
// file binds library entries to: an id, a display name, and the key of
// another Items row it refers to.
type testItem struct {
	ID   string
	Ref  string
	Name string
}

func extractTestRefs(item testItem) []identity.ConfigItemId {
	if item.Ref == "" {
		return nil
	}
	return []identity.ConfigItemId{{ItemType: "Items", Key: item.Ref}}
}

func TestLibraryDeduplicationStorage_DuplicateIndirectTryGetItem(t *testing.T) {
	lib := NewLibraryDeduplicationStorage[testItem]("Items", extractTestRefs)
	require.NoError(t, lib.LoadBaseline("X", testItem{ID: "X", Name: "base"}))

	p1 := identity.ExperimentVariantPair{ExperimentID: "expA", VariantID: "v1"}
	idx := lib.AssignPatchIndex(p1)

	require.NoError(t, lib.DuplicateIndirect(p1, "X"))

	v, ok := lib.TryGetItem("X", []identity.ConfigPatchIndex{idx})
	require.True(t, ok)
	assert.Equal(t, "base", v.Name)

	v, ok = lib.TryGetItem("X", nil)
	require.True(t, ok)
	assert.Equal(t, "base", v.Name, "with no active patches, resolution falls back to baseline")
}

func TestLibraryDeduplicationStorage_DuplicateIndirectMissingBaseline(t *testing.T) {
	lib := NewLibraryDeduplicationStorage[testItem]("Items", extractTestRefs)
	p1 := identity.ExperimentVariantPair{ExperimentID: "expA", VariantID: "v1"}
	err := lib.DuplicateIndirect(p1, "nope")
	require.Error(t, err)
	assert.IsType(t, &MissingBaselineError{}, err)
}

func TestLibraryDeduplicationStorage_CloneBaselineValue(t *testing.T) {
	lib := NewLibraryDeduplicationStorage[testItem]("Items", extractTestRefs)
	require.NoError(t, lib.LoadBaseline("X", testItem{ID: "X", Name: "base"}))

	v, err := lib.CloneBaselineValue("X")
	require.NoError(t, err)
	assert.Equal(t, "base", v.Name)

	_, err = lib.CloneBaselineValue("nope")
	require.Error(t, err)
	assert.IsType(t, &MissingBaselineError{}, err)
}

// TestBuildSpecialization_SinglePatch_IndirectDuplication reproduces the
// indirect-duplication scenario directly at the store level: baseline X
// references Y, a single active patch replaces Y, and X must be cloned
// (indirectly patched) so its reference resolves to the patched Y
// while X's own content is untouched.
func TestBuildSpecialization_SinglePatch_IndirectDuplication(t *testing.T) {
	itemsLib := NewLibraryDeduplicationStorage[testItem]("Items", extractTestRefs)
	require.NoError(t, itemsLib.LoadBaseline("X", testItem{ID: "X", Ref: "Y", Name: "base"}))
	require.NoError(t, itemsLib.LoadBaseline("Y", testItem{ID: "Y", Name: "base"}))

	p1 := identity.ExperimentVariantPair{ExperimentID: "expA", VariantID: "v1"}
	require.NoError(t, itemsLib.ApplyReplace(p1, "Y", testItem{ID: "Y", Name: "P1"}))

	top := NewTopLevelDeduplicationStorage([]LibraryHandle{NewHandle(itemsLib)})

	spec, err := BuildSpecialization(top, []identity.ExperimentVariantPair{p1}, OwnershipSinglePatch)
	require.NoError(t, err)

	xID := identity.ConfigItemId{ItemType: "Items", Key: "X"}
	yID := identity.ConfigItemId{ItemType: "Items", Key: "Y"}

	assert.Contains(t, spec.Duplicated, xID, "X indirectly references the patched Y and must be cloned")
	assert.Nil(t, spec.Owned, "SinglePatch ownership writes into the shared store, not an exclusively owned map")

	xVal, ok := spec.TryGetItem(top, xID)
	require.True(t, ok)
	assert.Equal(t, "base", xVal.(testItem).Name, "X itself is untouched by the patch")

	yVal, ok := spec.TryGetItem(top, yID)
	require.True(t, ok)
	assert.Equal(t, "P1", yVal.(testItem).Name, `X.Y resolves to "P1": the closure drags X along so its reference follows the patched Y`)

	entry, ok := itemsLib.Entry("X")
	require.True(t, ok)
	require.Len(t, entry.Overrides, 1)
	assert.False(t, entry.Overrides[0].IsDirectlyPatched, "X's clone is an indirectly-patched override")

	// A second specialization activating the same single patch finds
	// and reuses the same shared override rather than cloning again.
	spec2, err := BuildSpecialization(top, []identity.ExperimentVariantPair{p1}, OwnershipSinglePatch)
	require.NoError(t, err)
	assert.Equal(t, spec.Duplicated, spec2.Duplicated)
	entry, _ = itemsLib.Entry("X")
	assert.Len(t, entry.Overrides, 1, "the shared store still holds exactly one clone of X")
}

// TestBuildSpecialization_OwnershipNone_ExclusiveOwnershipNotShared builds
// a standalone multi-patch specialization where two directly-patched
// items disagree about a reference (patchRefersToDifferentPatch), and
// checks that the resulting indirect clone is exclusively owned by that
// specialization: it never lands in the shared per-library store, so a
// different specialization activating only one of the two patches
// neither sees it nor has its own shared state perturbed by it.
func TestBuildSpecialization_OwnershipNone_ExclusiveOwnershipNotShared(t *testing.T) {
	itemsLib := NewLibraryDeduplicationStorage[testItem]("Items", extractTestRefs)
	require.NoError(t, itemsLib.LoadBaseline("S", testItem{ID: "S", Ref: "T", Name: "base"}))
	require.NoError(t, itemsLib.LoadBaseline("T", testItem{ID: "T", Name: "base"}))
	require.NoError(t, itemsLib.LoadBaseline("U", testItem{ID: "U", Ref: "S", Name: "base"}))

	expA := identity.ExperimentVariantPair{ExperimentID: "expA", VariantID: "hard"}
	expB := identity.ExperimentVariantPair{ExperimentID: "expB", VariantID: "easy"}
	require.NoError(t, itemsLib.ApplyReplace(expA, "S", testItem{ID: "S", Ref: "T", Name: "patchedS"}))
	require.NoError(t, itemsLib.ApplyReplace(expB, "T", testItem{ID: "T", Name: "patchedT"}))

	top := NewTopLevelDeduplicationStorage([]LibraryHandle{NewHandle(itemsLib)})

	sID := identity.ConfigItemId{ItemType: "Items", Key: "S"}
	tID := identity.ConfigItemId{ItemType: "Items", Key: "T"}
	uID := identity.ConfigItemId{ItemType: "Items", Key: "U"}

	// Build the single-patch specialization for expB alone first, as
	// buildSpecializations would during initial dedup store
	// construction: T is directly patched under expB, so baseline S
	// (which references T) is a root, and baseline U (which references
	// S) is pulled into the closure too. Both clones land in the
	// shared per-library store under expB, since this is
	// OwnershipSinglePatch.
	specB, err := BuildSpecialization(top, []identity.ExperimentVariantPair{expB}, OwnershipSinglePatch)
	require.NoError(t, err)
	assert.Contains(t, specB.Duplicated, sID)
	assert.Contains(t, specB.Duplicated, uID)
	assert.Nil(t, specB.Owned)

	entry, ok := itemsLib.Entry("U")
	require.True(t, ok)
	require.Len(t, entry.Overrides, 1, "specB's SinglePatch clone of U landed in the shared store")

	// Now build the standalone combination of both patches together.
	// S is directly patched by expA but references T, directly patched
	// by a *different* patch (expB): patchRefersToDifferentPatch marks
	// S a root. U's baseline reference to S then pulls U into the
	// closure too.
	combined, err := BuildSpecialization(top, []identity.ExperimentVariantPair{expA, expB}, OwnershipNone)
	require.NoError(t, err)
	assert.Contains(t, combined.Duplicated, sID)
	assert.Contains(t, combined.Duplicated, uID)
	assert.NotContains(t, combined.Owned, sID, "S is already directly patched under expA, so no clone is needed for it")
	require.Contains(t, combined.Owned, uID, "U is only indirectly implicated, so its clone is exclusively owned by this specialization")

	sVal, ok := combined.TryGetItem(top, sID)
	require.True(t, ok)
	assert.Equal(t, "patchedS", sVal.(testItem).Name)

	tVal, ok := combined.TryGetItem(top, tID)
	require.True(t, ok)
	assert.Equal(t, "patchedT", tVal.(testItem).Name)

	uVal, ok := combined.TryGetItem(top, uID)
	require.True(t, ok)
	assert.Equal(t, "base", uVal.(testItem).Name)

	// The combined build's clone of U must never have touched the
	// shared per-library store: it is exclusively owned by combined
	// alone, so the store still holds only specB's own earlier clone.
	entry, ok = itemsLib.Entry("U")
	require.True(t, ok)
	assert.Len(t, entry.Overrides, 1, "OwnershipNone kept U's clone out of the shared store")
}
