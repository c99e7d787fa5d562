package patch

import (
	"testing"

	"github.com/standardbeagle/gcbuild/internal/tagfields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type turret struct {
	Range int64
	Power int64
}

func turretBinding() *tagfields.TagBinding {
	return &tagfields.TagBinding{
		New: func() any { return &turret{} },
		Fields: map[int]tagfields.Field{
			1: {Set: func(t any, v any) { t.(*turret).Range = v.(int64) }},
			2: {Set: func(t any, v any) { t.(*turret).Power = v.(int64) }},
		},
		Names: map[string]int{"Range": 1, "Power": 2},
	}
}

func TestStructurePatch_ApplyByTagID(t *testing.T) {
	p := NewStructurePatch("Turret")
	p.SetReplacementByTagID(2, int64(50))

	target := &turret{Range: 10, Power: 5}
	p.Apply(target, turretBinding())

	assert.Equal(t, int64(10), target.Range)
	assert.Equal(t, int64(50), target.Power)
	assert.Equal(t, []int{2}, p.ReplacedTagIDs())
}

func TestStructurePatch_ApplyToleratesUnknownTagID(t *testing.T) {
	p := NewStructurePatch("Turret")
	p.SetReplacementByTagID(99, "gone")
	p.SetReplacementByTagID(1, int64(20))

	target := &turret{}
	assert.NotPanics(t, func() { p.Apply(target, turretBinding()) })
	assert.Equal(t, int64(20), target.Range)
}

func TestNewStructurePatchFromNames(t *testing.T) {
	p, err := NewStructurePatchFromNames("Turret", turretBinding(), []NamedReplacement{
		{Name: "Range", Value: int64(15)},
	})
	require.NoError(t, err)

	target := &turret{}
	p.Apply(target, turretBinding())
	assert.Equal(t, int64(15), target.Range)
}

func TestNewStructurePatchFromNames_UnknownNameRejected(t *testing.T) {
	_, err := NewStructurePatchFromNames("Turret", turretBinding(), []NamedReplacement{
		{Name: "Bogus", Value: 1},
	})
	assert.Error(t, err)
	assert.IsType(t, &tagfields.UnknownMemberNameError{}, err)
}
