// Package splitter groups a sheet's data rows into items: spans of
// consecutive rows sharing one "#key"-tagged identity, per spec.md
// §4.3. Column-level "/:id" variant overrides are already folded into
// the shared path tree as distinct, variant-tagged members (see
// internal/pathtree), so a plain row materialization carries both the
// baseline and override values for a single item in one pass; only the
// reserved "/Variant" row marker needs splitter-level handling, since it
// starts an entirely separate RootObject built from just that one row.
package splitter

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/pathdsl"
	"github.com/standardbeagle/gcbuild/internal/pathtree"
	"github.com/standardbeagle/gcbuild/internal/sheet"
	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
)

// NoKeyColumnError is reported when a library sheet has no "#key"-tagged
// header at all: row grouping has nothing to split on.
type NoKeyColumnError struct {
	Location location.SourceLocation
}

func (e *NoKeyColumnError) Error() string {
	return "sheet has no #key column to split items on"
}

// MissingKeyValueError is reported when a key column is blank on a row
// and no prior row ever supplied a value for it to inherit.
type MissingKeyValueError struct {
	Location location.SourceLocation
	Column   int
}

func (e *MissingKeyValueError) Error() string {
	return fmt.Sprintf("column %d: blank key cell with no preceding value to inherit", e.Column)
}

// UnrecognizedValueRowError is reported by SplitKeyValueItem when a data
// row's label is neither "Value" nor a parseable "/:id" override marker.
type UnrecognizedValueRowError struct {
	Location location.SourceLocation
	Label    string
}

func (e *UnrecognizedValueRowError) Error() string {
	return fmt.Sprintf("unrecognized key-value row label %q", e.Label)
}

// SplitLibraryItems runs the full header-path pipeline over a
// horizontal (library) sheet and groups its data rows into items.
func SplitLibraryItems(s *sheet.Sheet) ([]*syntaxtree.RootObject, error) {
	if s.NumRows() == 0 {
		return nil, nil
	}

	headers := headerStrings(s.Rows[0])
	res, err := pathdsl.BuildSliceInfos(headers, s.ColumnLocation)
	if err != nil {
		return nil, err
	}

	tree, err := pathtree.Build(res.Slices)
	if err != nil {
		return nil, err
	}

	keyCols := keyColumns(res.Slices)
	if len(keyCols) == 0 {
		return nil, &NoKeyColumnError{Location: s.RowLocation(0)}
	}

	last := make([]string, len(keyCols))
	have := make([]bool, len(keyCols))

	var items []*syntaxtree.RootObject
	var current *syntaxtree.RootObject

	for r := 1; r < s.NumRows(); r++ {
		row := s.Rows[r]
		rv := rowView{row: r, cells: row, source: s.CellLocation}

		variantNonBlank, variantVal := false, ""
		if res.Variant != nil {
			variantVal, _ = rv.value(res.Variant.Index)
			variantNonBlank = strings.TrimSpace(variantVal) != ""
		}

		keyNonBlank := rowKeyNonBlank(row, keyCols)

		if rowBlank(row) && current == nil {
			// Leading blank row before the first item: nothing to
			// inherit a key from yet, skip it outright.
			continue
		}

		if variantNonBlank {
			id, err := resolveKeyID(row, keyCols, last, have, s)
			if err != nil {
				return nil, err
			}
			node, err := materializeRow(tree, rv)
			if err != nil {
				return nil, err
			}
			obj, ok := node.(*syntaxtree.Object)
			if !ok {
				return nil, fmt.Errorf("splitter: row %d did not materialize to an object", r)
			}
			root := &syntaxtree.RootObject{ID: id, Node: obj, Loc: s.RowLocation(r), VariantID: variantVal}
			if res.Aliases != nil {
				root.Aliases, _ = rv.value(res.Aliases.Index)
			}
			items = append(items, root)
			continue
		}

		if keyNonBlank {
			id, err := resolveKeyID(row, keyCols, last, have, s)
			if err != nil {
				return nil, err
			}
			node, err := materializeRow(tree, rv)
			if err != nil {
				return nil, err
			}
			obj, ok := node.(*syntaxtree.Object)
			if !ok {
				return nil, fmt.Errorf("splitter: row %d did not materialize to an object", r)
			}
			current = &syntaxtree.RootObject{ID: id, Node: obj, Loc: s.RowLocation(r)}
			items = append(items, current)
			if res.Aliases != nil {
				if a, _ := rv.value(res.Aliases.Index); strings.TrimSpace(a) != "" {
					current.Aliases = a
				}
			}
			continue
		}

		if current == nil {
			// A non-key, non-variant row before any item has started:
			// nothing to attach it to.
			continue
		}

		node, err := materializeRow(tree, rv)
		if err != nil {
			return nil, err
		}
		obj, ok := node.(*syntaxtree.Object)
		if !ok {
			return nil, fmt.Errorf("splitter: row %d did not materialize to an object", r)
		}
		current.Node = mergeNodes(current.Node, obj).(*syntaxtree.Object)
		current.Loc = location.Union(current.Loc, s.RowLocation(r))
		if res.Aliases != nil {
			if a, _ := rv.value(res.Aliases.Index); strings.TrimSpace(a) != "" {
				current.Aliases = a
			}
		}
	}

	return items, nil
}

// SplitKeyValueItem runs the same machinery over a vertical key-value
// sheet's transposed view (one item, optionally carrying variant
// override columns as extra value rows) per sheet.Transpose's doc
// comment. It returns the baseline item plus any variant RootObjects
// parsed from "/:id" row labels; value-inheritance from baseline onto
// each variant is left to the syntax-tree post-processing stage.
func SplitKeyValueItem(s *sheet.Sheet) (*syntaxtree.RootObject, []*syntaxtree.RootObject, error) {
	t := s.Transpose()
	if t.NumRows() < 2 {
		return nil, nil, &NoKeyColumnError{Location: s.RowLocation(0)}
	}

	headerRow := t.Rows[0]
	headers := headerStrings(headerRow)
	if len(headers) > 0 {
		headers = headers[1:] // column 0 is the per-row label, not a path
	}
	res, err := pathdsl.BuildSliceInfos(headers, func(i int) location.SourceLocation {
		return t.CellLocation(0, i+1)
	})
	if err != nil {
		return nil, nil, err
	}
	tree, err := pathtree.Build(res.Slices)
	if err != nil {
		return nil, nil, err
	}

	var baseline *syntaxtree.RootObject
	var variants []*syntaxtree.RootObject

	for r := 1; r < t.NumRows(); r++ {
		row := t.Rows[r]
		label := strings.TrimSpace(row[0].Value)
		rv := rowView{row: r, cells: shiftLeft(row), source: func(row, col int) location.SourceLocation {
			return t.CellLocation(row, col+1)
		}}

		node, err := materializeRow(tree, rv)
		if err != nil {
			return nil, nil, err
		}
		obj, ok := node.(*syntaxtree.Object)
		if !ok {
			return nil, nil, fmt.Errorf("splitter: key-value row %d did not materialize to an object", r)
		}

		if r == 1 {
			baseline = &syntaxtree.RootObject{Node: obj, Loc: t.RowLocation(r)}
			continue
		}

		cell, err := pathdsl.ParseHeaderCell(label)
		if err != nil || cell.Kind != pathdsl.KindVariantOverride {
			return nil, nil, &UnrecognizedValueRowError{Location: t.RowLocation(r), Label: label}
		}
		for _, vid := range cell.VariantIDs {
			variants = append(variants, &syntaxtree.RootObject{Node: obj, Loc: t.RowLocation(r), VariantID: vid})
		}
	}

	return baseline, variants, nil
}

func shiftLeft(row []sheet.Cell) []sheet.Cell {
	if len(row) == 0 {
		return row
	}
	return row[1:]
}

func headerStrings(row []sheet.Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Value
	}
	return out
}

func keyColumns(slices []pathdsl.SliceInfo) []int {
	var cols []int
	for _, s := range slices {
		if s.IsKey() {
			cols = append(cols, s.Index)
		}
	}
	return cols
}

func rowBlank(row []sheet.Cell) bool {
	for _, c := range row {
		if !c.Empty() {
			return false
		}
	}
	return true
}

func rowKeyNonBlank(row []sheet.Cell, keyCols []int) bool {
	for _, idx := range keyCols {
		if idx < len(row) && !row[idx].Empty() {
			return true
		}
	}
	return false
}

// resolveKeyID computes a row's identity tuple from its key columns,
// substituting the last-seen value for any column left blank on this
// row. A column that has never had a value by the time it is needed is
// a hard error (spec.md §4.3, key inheritance).
func resolveKeyID(row []sheet.Cell, keyCols []int, last []string, have []bool, s *sheet.Sheet) ([]string, error) {
	id := make([]string, len(keyCols))
	for i, idx := range keyCols {
		var v string
		if idx < len(row) {
			v = row[idx].Value
		}
		if strings.TrimSpace(v) != "" {
			last[i] = v
			have[i] = true
		}
		if !have[i] {
			return nil, &MissingKeyValueError{Location: s.CellLocation(row[0].Row, idx), Column: idx}
		}
		id[i] = last[i]
	}
	return id, nil
}
