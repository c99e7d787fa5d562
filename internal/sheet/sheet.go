// Package sheet models one ingested spreadsheet as a rectangular grid of
// cells, plus the small amount of preprocessing (padding ragged rows,
// stripping "//" comment columns) every downstream parsing stage expects
// to already have happened.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/standardbeagle/gcbuild/internal/location"
)

// Cell is one spreadsheet cell: its string value and zero-based
// position.
type Cell struct {
	Value string
	Row   int
	Col   int
}

func (c Cell) Empty() bool { return strings.TrimSpace(c.Value) == "" }

// Sheet is a rectangular cells[row][col] grid with its SourceInfo.
type Sheet struct {
	Source location.SourceInfo
	Rows   [][]Cell
}

// FromRows builds a Sheet from raw string rows, padding every row out to
// the widest row's column count so Cells is always rectangular.
func FromRows(src location.SourceInfo, raw [][]string) *Sheet {
	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}

	rows := make([][]Cell, len(raw))
	for r, rawRow := range raw {
		row := make([]Cell, width)
		for c := 0; c < width; c++ {
			v := ""
			if c < len(rawRow) {
				v = rawRow[c]
			}
			row[c] = Cell{Value: v, Row: r, Col: c}
		}
		rows[r] = row
	}
	return &Sheet{Source: src, Rows: rows}
}

// FromCSV reads raw CSV text into a Sheet. Ragged rows are tolerated and
// padded; FieldsPerRecord is disabled since config sheets routinely grow
// a trailing column without updating every row.
func FromCSV(src location.SourceInfo, r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var raw [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: read csv: %w", err)
		}
		raw = append(raw, record)
	}
	return FromRows(src, raw), nil
}

// NumRows and NumCols report the grid dimensions.
func (s *Sheet) NumRows() int { return len(s.Rows) }
func (s *Sheet) NumCols() int {
	if len(s.Rows) == 0 {
		return 0
	}
	return len(s.Rows[0])
}

// IsEmpty reports whether the sheet has no cells at all, or every cell is
// blank.
func (s *Sheet) IsEmpty() bool {
	for _, row := range s.Rows {
		for _, c := range row {
			if !c.Empty() {
				return false
			}
		}
	}
	return true
}

// EmptySheetError is reported for a sheet with no non-blank cell at all.
type EmptySheetError struct {
	Location location.SourceLocation
}

func (e *EmptySheetError) Error() string { return "Input sheet is completely empty" }

// Validate returns an EmptySheetError if the sheet has no content.
func (s *Sheet) Validate() error {
	if s.IsEmpty() {
		return &EmptySheetError{Location: location.Sheet(s.Source, s.NumRows(), s.NumCols())}
	}
	return nil
}

// CellLocation returns the SourceLocation of a single cell in this
// sheet.
func (s *Sheet) CellLocation(row, col int) location.SourceLocation {
	return location.Cell(s.Source, row, col)
}

// RowLocation returns the SourceLocation of an entire row.
func (s *Sheet) RowLocation(row int) location.SourceLocation {
	return location.Row(s.Source, row, s.NumCols())
}

// ColumnLocation returns the SourceLocation of an entire column.
func (s *Sheet) ColumnLocation(col int) location.SourceLocation {
	return location.Column(s.Source, col, s.NumRows())
}

// FilterCommentColumns returns the indices of header cells that are NOT
// "//"-prefixed comments, preserving order. Columns excluded here should
// be dropped from every row, not just the header, before any further
// parsing sees them.
func FilterCommentColumns(header []Cell) []int {
	var keep []int
	for _, c := range header {
		if !strings.HasPrefix(strings.TrimSpace(c.Value), "//") {
			keep = append(keep, c.Col)
		}
	}
	return keep
}

// Project returns a new Sheet containing only the given column indices.
// Rows keep their positions; column positions are renumbered to be
// contiguous within the result, so cells retain no memory of their original column; callers needing
// original-column locations should resolve those against the source
// sheet before projecting.
func (s *Sheet) Project(cols []int) *Sheet {
	rows := make([][]Cell, len(s.Rows))
	for r, row := range s.Rows {
		newRow := make([]Cell, len(cols))
		for nc, oc := range cols {
			v := ""
			if oc < len(row) {
				v = row[oc].Value
			}
			newRow[nc] = Cell{Value: v, Row: r, Col: nc}
		}
		rows[r] = newRow
	}
	return &Sheet{Source: s.Source, Rows: rows}
}

// Transpose returns a new Sheet with rows and columns swapped, used to
// run the library-sheet machinery over a key-value sheet's vertical
// layout (spec.md §4.3).
func (s *Sheet) Transpose() *Sheet {
	rows := s.NumRows()
	cols := s.NumCols()
	out := make([][]Cell, cols)
	for c := 0; c < cols; c++ {
		row := make([]Cell, rows)
		for r := 0; r < rows; r++ {
			row[r] = Cell{Value: s.Rows[r][c].Value, Row: c, Col: r}
		}
		out[c] = row
	}
	return &Sheet{Source: s.Source, Rows: out}
}
