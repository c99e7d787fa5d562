package sheet

import (
	"strings"
	"testing"

	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRowsPadsRaggedRows(t *testing.T) {
	src := location.SpreadsheetFile{Path: "x.csv"}
	s := FromRows(src, [][]string{
		{"a", "b", "c"},
		{"d"},
	})
	require.Equal(t, 3, s.NumCols())
	assert.Equal(t, "", s.Rows[1][1].Value)
}

func TestValidateEmptySheet(t *testing.T) {
	src := location.SpreadsheetFile{Path: "x.csv"}
	s := FromRows(src, [][]string{{"", ""}, {"", ""}})
	err := s.Validate()
	require.Error(t, err)
	var emptyErr *EmptySheetError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestValidateHeaderOnlySheetIsNotEmpty(t *testing.T) {
	src := location.SpreadsheetFile{Path: "x.csv"}
	s := FromRows(src, [][]string{{"Id #key", "Name"}})
	assert.NoError(t, s.Validate())
}

func TestFilterCommentColumns(t *testing.T) {
	header := []Cell{{Value: "Id #key"}, {Value: "// note"}, {Value: "Name"}}
	keep := FilterCommentColumns(header)
	assert.Equal(t, []int{0, 2}, keep)
}

func TestTranspose(t *testing.T) {
	src := location.SpreadsheetFile{Path: "x.csv"}
	s := FromRows(src, [][]string{
		{"Member", "Value"},
		{"Name", "Sword"},
	})
	tr := s.Transpose()
	require.Equal(t, 2, tr.NumRows())
	assert.Equal(t, "Member", tr.Rows[0][0].Value)
	assert.Equal(t, "Name", tr.Rows[0][1].Value)
}

func TestFromCSV(t *testing.T) {
	src := location.SpreadsheetFile{Path: "x.csv"}
	s, err := FromCSV(src, strings.NewReader("Id #key,Name\na,Apple\nb,Banana\n"))
	require.NoError(t, err)
	require.Equal(t, 3, s.NumRows())
	assert.Equal(t, "Apple", s.Rows[1][1].Value)
}
