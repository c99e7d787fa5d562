package pathdsl

import (
	"testing"

	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderCell_Member(t *testing.T) {
	c, err := ParseHeaderCell("Name")
	require.NoError(t, err)
	require.Len(t, c.Segments, 1)
	assert.Equal(t, "Name", c.Segments[0].Name)
	assert.Equal(t, Member, c.Segments[0].Kind)
}

func TestParseHeaderCell_Nested(t *testing.T) {
	c, err := ParseHeaderCell("Stats.Attack")
	require.NoError(t, err)
	require.Len(t, c.Segments, 2)
	assert.Equal(t, "Stats", c.Segments[0].Name)
	assert.Equal(t, "Attack", c.Segments[1].Name)
}

func TestParseHeaderCell_LinearCollection(t *testing.T) {
	c, err := ParseHeaderCell("Tags[]")
	require.NoError(t, err)
	require.Len(t, c.Segments, 1)
	assert.Equal(t, LinearCollection, c.Segments[0].Kind)
}

func TestParseHeaderCell_IndexedElement(t *testing.T) {
	c, err := ParseHeaderCell("Slots[3]")
	require.NoError(t, err)
	require.Len(t, c.Segments, 1)
	assert.Equal(t, IndexedElement, c.Segments[0].Kind)
	require.NotNil(t, c.Segments[0].ElementIndex)
	assert.Equal(t, 3, *c.Segments[0].ElementIndex)
}

func TestParseHeaderCell_KeyTag(t *testing.T) {
	c, err := ParseHeaderCell("Id #key")
	require.NoError(t, err)
	assert.True(t, c.IsKey())
}

func TestParseHeaderCell_CommentTag(t *testing.T) {
	c, err := ParseHeaderCell("#comment: designer notes")
	require.NoError(t, err)
	assert.Equal(t, KindCommentOnly, c.Kind)
}

func TestParseHeaderCell_UnknownTag(t *testing.T) {
	_, err := ParseHeaderCell("Name #bogus")
	assert.Error(t, err)
}

func TestParseHeaderCell_TagOnEmptyPathNonComment(t *testing.T) {
	_, err := ParseHeaderCell("#key")
	assert.Error(t, err)
}

func TestParseHeaderCell_EmptySegment(t *testing.T) {
	_, err := ParseHeaderCell("A..B")
	assert.Error(t, err)
}

func TestParseHeaderCell_UnbalancedBrackets(t *testing.T) {
	_, err := ParseHeaderCell("A[3")
	assert.Error(t, err)
}

func TestParseHeaderCell_ReservedVariant(t *testing.T) {
	c, err := ParseHeaderCell("/Variant")
	require.NoError(t, err)
	assert.Equal(t, KindReservedVariant, c.Kind)
}

func TestParseHeaderCell_ReservedAliases(t *testing.T) {
	c, err := ParseHeaderCell("/Aliases")
	require.NoError(t, err)
	assert.Equal(t, KindReservedAliases, c.Kind)
}

func TestParseHeaderCell_VariantOverride(t *testing.T) {
	c, err := ParseHeaderCell("/:expA/v1,expB/v2")
	require.NoError(t, err)
	require.Equal(t, KindVariantOverride, c.Kind)
	assert.Equal(t, []string{"expA/v1", "expB/v2"}, c.VariantIDs)
}

func TestBuildSliceInfos_VariantInheritsLeftColumn(t *testing.T) {
	headers := []string{"Id #key", "Name", "/:expA/v1"}
	res, err := BuildSliceInfos(headers, func(i int) location.SourceLocation { return location.SourceLocation{} })
	require.NoError(t, err)
	require.Len(t, res.Slices, 3)
	assert.Equal(t, "Name", res.Slices[2].Segments[0].Name)
	assert.Equal(t, "expA/v1", res.Slices[2].Segments[0].VariantID)
}

func TestBuildSliceInfos_VariantColumnWithoutPredecessor(t *testing.T) {
	headers := []string{"/:expA/v1"}
	_, err := BuildSliceInfos(headers, func(i int) location.SourceLocation { return location.SourceLocation{} })
	assert.Error(t, err)
}
