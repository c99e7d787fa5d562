package splitter

import (
	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/nodeid"
	"github.com/standardbeagle/gcbuild/internal/pathtree"
	"github.com/standardbeagle/gcbuild/internal/sheet"
	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
	"github.com/standardbeagle/gcbuild/internal/valueparser"
)

// rowView lets materialize resolve a slice's column index against one
// concrete data row, producing located cell values.
type rowView struct {
	row    int
	cells  []sheet.Cell
	source func(row, col int) location.SourceLocation
}

func (v rowView) value(col int) (string, location.SourceLocation) {
	if col < 0 || col >= len(v.cells) {
		return "", v.source(v.row, col)
	}
	return v.cells[col].Value, v.source(v.row, col)
}

// materializeRow walks a shared PathNode structure against one row's
// cells, producing a syntax-tree Node carrying that row's values.
func materializeRow(node pathtree.PathNode, v rowView) (syntaxtree.Node, error) {
	switch n := node.(type) {
	case *pathtree.PathNodeScalar:
		val, loc := v.value(n.Slice.Index)
		return &syntaxtree.Scalar{Value: val, Loc: loc}, nil

	case *pathtree.PathNodeObject:
		obj := syntaxtree.NewObject(n.Location())
		for _, id := range n.Order {
			child, err := materializeRow(n.Children[id], v)
			if err != nil {
				return nil, err
			}
			obj.Set(nodeid.MemberId(id), child)
		}
		return obj, nil

	case *pathtree.PathNodeCollection:
		return materializeCollection(n, v)
	}
	return nil, nil
}

func materializeCollection(n *pathtree.PathNodeCollection, v rowView) (syntaxtree.Node, error) {
	col := &syntaxtree.Collection{Loc: n.Location()}

	switch {
	case n.ScalarSlice != nil:
		raw, loc := v.value(n.ScalarSlice.Index)
		elems, err := valueparser.ParseElements(raw)
		if err != nil {
			return nil, &location.LocatedErr{Location: loc, Err: err}
		}
		col.Elements = make([]syntaxtree.Node, len(elems))
		for i, e := range elems {
			col.Elements[i] = &syntaxtree.Scalar{Value: e, Loc: loc}
		}
		return col, nil

	case len(n.LinearSlices) > 0:
		col.Elements = make([]syntaxtree.Node, len(n.LinearSlices))
		for i, s := range n.LinearSlices {
			val, loc := v.value(s.Index)
			col.Elements[i] = &syntaxtree.Scalar{Value: val, Loc: loc}
		}
		return col, nil

	default:
		size := n.MaxIndex() + 1
		col.Elements = make([]syntaxtree.Node, size)
		for idx, s := range n.IndexedSlices {
			val, loc := v.value(s.Index)
			col.Elements[idx] = &syntaxtree.Scalar{Value: val, Loc: loc}
		}
		for idx, child := range n.IndexedNodes {
			materialized, err := materializeRow(child, v)
			if err != nil {
				return nil, err
			}
			col.Elements[idx] = materialized
		}
		return col, nil
	}
}

// mergeNodes combines two rows' materializations of the same shared
// structure into one item's tree, implementing this engine's multi-row
// item rule (see DESIGN.md): scalar leaves take the last non-blank
// value across the item's rows; ScalarSlice/LinearSlices collections
// concatenate row by row; indexed collections overlay, with a later
// row's non-nil element replacing an earlier one at the same index.
func mergeNodes(a, b syntaxtree.Node) syntaxtree.Node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	switch av := a.(type) {
	case *syntaxtree.Scalar:
		bv := b.(*syntaxtree.Scalar)
		if bv.Value != "" {
			return bv
		}
		return av

	case *syntaxtree.Object:
		bv := b.(*syntaxtree.Object)
		merged := syntaxtree.NewObject(location.Union(av.Loc, bv.Loc))
		for _, id := range av.Order {
			merged.Set(id, av.Members[id])
		}
		for _, id := range bv.Order {
			if existing, ok := merged.Get(id); ok {
				merged.Set(id, mergeNodes(existing, bv.Members[id]))
			} else {
				merged.Set(id, bv.Members[id])
			}
		}
		return merged

	case *syntaxtree.Collection:
		bv := b.(*syntaxtree.Collection)
		return mergeCollections(av, bv)
	}
	return a
}

func mergeCollections(a, b *syntaxtree.Collection) *syntaxtree.Collection {
	loc := location.Union(a.Loc, b.Loc)
	if isIndexedShape(a) {
		size := len(a.Elements)
		if len(b.Elements) > size {
			size = len(b.Elements)
		}
		elems := make([]syntaxtree.Node, size)
		copy(elems, a.Elements)
		for i, e := range b.Elements {
			if e != nil {
				elems[i] = mergeNodes(elems[i], e)
			}
		}
		return &syntaxtree.Collection{Elements: elems, Loc: loc}
	}

	elems := make([]syntaxtree.Node, 0, len(a.Elements)+len(b.Elements))
	elems = append(elems, a.Elements...)
	elems = append(elems, b.Elements...)
	return &syntaxtree.Collection{Elements: elems, Loc: loc}
}

// isIndexedShape is a best-effort heuristic distinguishing a
// sparse/indexed collection (built from explicit bracket indices, which
// should overlay across rows) from a positional one (built from inline
// or repeated-column syntax, which should concatenate across rows): an
// indexed collection is the only shape that can contain nil gaps.
func isIndexedShape(c *syntaxtree.Collection) bool {
	for _, e := range c.Elements {
		if e == nil {
			return true
		}
	}
	return false
}
