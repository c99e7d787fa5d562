package patch

import (
	"testing"

	"github.com/standardbeagle/gcbuild/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baselineLib() *library.Library[string, int] {
	lib := library.New[string, int]()
	lib.Set("sword", 1)
	lib.Set("shield", 2)
	return lib
}

func TestLibraryPatch_ReplaceAppendConflictRejected(t *testing.T) {
	p := NewLibraryPatch[string, int]()
	require.NoError(t, p.SetAppended("bow", 3))
	err := p.SetReplaced("bow", 30)
	assert.Error(t, err)
	assert.IsType(t, &ReplaceAppendConflictError[string]{}, err)
}

func TestLibraryPatch_ApplyReplaceRequiresExistingKey(t *testing.T) {
	p := NewLibraryPatch[string, int]()
	require.NoError(t, p.SetReplaced("missing", 99))

	lib := baselineLib()
	err := p.Apply(lib)
	assert.Error(t, err)
	assert.IsType(t, &MissingReplaceTargetError[string]{}, err)
}

func TestLibraryPatch_ApplyReplaceAndAppend(t *testing.T) {
	p := NewLibraryPatch[string, int]()
	require.NoError(t, p.SetReplaced("sword", 100))
	require.NoError(t, p.SetAppended("bow", 3))

	lib := baselineLib()
	require.NoError(t, p.Apply(lib))

	v, ok := lib.Get("sword")
	require.True(t, ok)
	assert.Equal(t, 100, v)

	v, ok = lib.Get("bow")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{"sword", "shield", "bow"}, lib.Order())
}

func TestLibraryPatch_ContainsAndResolve(t *testing.T) {
	p := NewLibraryPatch[string, int]()
	require.NoError(t, p.SetAppended("bow", 3))

	assert.True(t, p.Contains("bow"))
	assert.False(t, p.Contains("sword"))

	v, ok := p.Resolve("bow")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = p.Resolve("sword")
	assert.False(t, ok)
}

func TestResolveAcrossPatches_LastWriterWins(t *testing.T) {
	lib := baselineLib()

	patchA := NewLibraryPatch[string, int]()
	require.NoError(t, patchA.SetAppended("bow", 3))

	patchB := NewLibraryPatch[string, int]()
	require.NoError(t, patchB.SetAppended("bow", 30))

	v, ok := ResolveAcrossPatches(lib, []*LibraryPatch[string, int]{patchA, patchB}, "bow")
	require.True(t, ok)
	assert.Equal(t, 30, v)
}

func TestResolveAcrossPatches_FallsBackToBaseline(t *testing.T) {
	lib := baselineLib()
	patchA := NewLibraryPatch[string, int]()

	v, ok := ResolveAcrossPatches(lib, []*LibraryPatch[string, int]{patchA}, "sword")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}
