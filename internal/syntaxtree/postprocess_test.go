package syntaxtree

import (
	"testing"

	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/nodeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalar(v string) *Scalar { return &Scalar{Value: v} }

func TestExtractAliases(t *testing.T) {
	root := &RootObject{Aliases: " a, b ,,c"}
	assert.Equal(t, []string{"a", "b", "c"}, ExtractAliases(root))
}

func TestExtractAliases_Empty(t *testing.T) {
	root := &RootObject{Aliases: "  "}
	assert.Nil(t, ExtractAliases(root))
}

func TestExtractVariants_TopLevelOverride(t *testing.T) {
	obj := NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Name"}, scalar("Sword"))
	obj.Set(nodeid.MemberId{Name: "Name", VariantID: "hard"}, scalar("Sharper Sword"))
	root := &RootObject{ID: []string{"sword"}, Node: obj}

	baseline, variants := ExtractVariants(root)
	n, ok := baseline.Node.Get(nodeid.MemberId{Name: "Name"})
	require.True(t, ok)
	assert.Equal(t, "Sword", n.(*Scalar).Value)

	require.Len(t, variants, 1)
	assert.Equal(t, "hard", variants[0].VariantID)
	vn, ok := variants[0].Node.Get(nodeid.MemberId{Name: "Name"})
	require.True(t, ok)
	assert.Equal(t, "Sharper Sword", vn.(*Scalar).Value)
}

func TestExtractVariants_NestedOverride(t *testing.T) {
	stats := NewObject(location.SourceLocation{})
	stats.Set(nodeid.MemberId{Name: "HP"}, scalar("100"))
	stats.Set(nodeid.MemberId{Name: "HP", VariantID: "hard"}, scalar("200"))

	obj := NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Stats"}, stats)
	root := &RootObject{ID: []string{"boss"}, Node: obj}

	baseline, variants := ExtractVariants(root)
	baseStats := baseline.Node.Members[nodeid.MemberId{Name: "Stats"}].(*Object)
	baseHP, _ := baseStats.Get(nodeid.MemberId{Name: "HP"})
	assert.Equal(t, "100", baseHP.(*Scalar).Value)

	require.Len(t, variants, 1)
	vStats := variants[0].Node.Members[nodeid.MemberId{Name: "Stats"}].(*Object)
	vHP, ok := vStats.Get(nodeid.MemberId{Name: "HP"})
	require.True(t, ok)
	assert.Equal(t, "200", vHP.(*Scalar).Value)
}

func TestInheritVariantValuesFromBaseline_BlankScalarInherits(t *testing.T) {
	baseObj := NewObject(location.SourceLocation{})
	baseObj.Set(nodeid.MemberId{Name: "Name"}, scalar("Sword"))
	baseObj.Set(nodeid.MemberId{Name: "Power"}, scalar("10"))
	baseline := &RootObject{ID: []string{"sword"}, Node: baseObj}

	varObj := NewObject(location.SourceLocation{})
	varObj.Set(nodeid.MemberId{Name: "Power"}, scalar("20"))
	variant := &RootObject{ID: []string{"sword"}, VariantID: "hard", Node: varObj}

	merged := InheritVariantValuesFromBaseline(baseline, variant)
	name, _ := merged.Node.Get(nodeid.MemberId{Name: "Name"})
	power, _ := merged.Node.Get(nodeid.MemberId{Name: "Power"})
	assert.Equal(t, "Sword", name.(*Scalar).Value)
	assert.Equal(t, "20", power.(*Scalar).Value)
	assert.Equal(t, "hard", merged.VariantID)
}

func TestInheritVariantValuesFromBaseline_EmptyCollectionInherits(t *testing.T) {
	baseObj := NewObject(location.SourceLocation{})
	baseObj.Set(nodeid.MemberId{Name: "Tags"}, &Collection{Elements: []Node{scalar("a"), scalar("b")}})
	baseline := &RootObject{Node: baseObj}

	varObj := NewObject(location.SourceLocation{})
	varObj.Set(nodeid.MemberId{Name: "Tags"}, &Collection{Elements: nil})
	variant := &RootObject{Node: varObj, VariantID: "hard"}

	merged := InheritVariantValuesFromBaseline(baseline, variant)
	tags, _ := merged.Node.Get(nodeid.MemberId{Name: "Tags"})
	assert.Len(t, tags.(*Collection).Elements, 2)
}

func TestDetectDuplicateObjects(t *testing.T) {
	roots := []*RootObject{
		{ID: []string{"sword"}},
		{ID: []string{"sword"}},
	}
	err := DetectDuplicateObjects(roots)
	require.Error(t, err)
	var dup *DuplicateItemError
	assert.ErrorAs(t, err, &dup)
}

func TestDetectDuplicateObjects_SameIDDifferentVariantIsFine(t *testing.T) {
	roots := []*RootObject{
		{ID: []string{"sword"}},
		{ID: []string{"sword"}, VariantID: "hard"},
	}
	assert.NoError(t, DetectDuplicateObjects(roots))
}
