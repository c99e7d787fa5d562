// Package pathtree groups the flat list of header-path slices that
// internal/pathdsl produces into a hierarchical PathNode tree describing
// one row's (or column-group's) shape: which members are plain scalars,
// which are objects, and which are collections, and in which of the
// collection's three surface syntaxes (inline cell, repeated implicit
// columns, explicit bracket index).
package pathtree

import (
	"fmt"

	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/nodeid"
	"github.com/standardbeagle/gcbuild/internal/pathdsl"
)

// TreeError reports a structural problem building the path tree: a
// duplicate header, a scalar/compound conflict, or illegal nesting.
type TreeError struct {
	Location  location.SourceLocation
	Location2 location.SourceLocation // set for duplicate-header errors
	Reason    string
}

func (e *TreeError) Error() string {
	if e.Location2.Source != nil {
		return fmt.Sprintf("%s: %s (also at %s)", e.Location, e.Reason, e.Location2)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Reason)
}

// PathNode is the common interface of PathNodeScalar, PathNodeCollection,
// and PathNodeObject.
type PathNode interface {
	Location() location.SourceLocation
}

// PathNodeScalar is a leaf: a column (or row) with no further path
// segments, bound directly from its slice's cell value(s).
type PathNodeScalar struct {
	Slice pathdsl.SliceInfo
}

func (n *PathNodeScalar) Location() location.SourceLocation { return n.Slice.Location }

// PathNodeCollection captures all three collection surface syntaxes.
// Exactly one of ScalarSlice, LinearSlices, (IndexedSlices or
// IndexedNodes) is populated for a given node — mixing representations
// for the same path is a TreeError.
type PathNodeCollection struct {
	// ScalarSlice: a single "G[]" column whose one cell
	// holds the entire collection as an inline literal, e.g. "[a,b,c]".
	ScalarSlice *pathdsl.SliceInfo

	// LinearSlices: two or more "G[]" columns with no further path,
	// each one scalar element, ordered by column appearance.
	LinearSlices []pathdsl.SliceInfo

	// IndexedSlices: "G[N]" columns with no further path: explicit,
	// possibly sparse, scalar elements.
	IndexedSlices map[int]pathdsl.SliceInfo

	// IndexedNodes: "G[N].rest" columns (explicit index) or "G[].rest"
	// columns zipped by implicit occurrence order (at most one level of
	// nesting for the implicit form, per the header DSL), each a
	// recursively built PathNode.
	IndexedNodes map[int]PathNode

	loc location.SourceLocation
}

func (n *PathNodeCollection) Location() location.SourceLocation { return n.loc }

// MaxIndex returns the highest populated index across IndexedSlices and
// IndexedNodes, or -1 if both are empty.
func (n *PathNodeCollection) MaxIndex() int {
	max := -1
	for i := range n.IndexedSlices {
		if i > max {
			max = i
		}
	}
	for i := range n.IndexedNodes {
		if i > max {
			max = i
		}
	}
	return max
}

// PathNodeObject is an object with named (and possibly variant-scoped)
// members. Order preserves first-appearance order of each member for
// deterministic downstream iteration.
type PathNodeObject struct {
	Children map[nodeid.MemberId]PathNode
	Order    []nodeid.MemberId
	loc      location.SourceLocation
}

func (n *PathNodeObject) Location() location.SourceLocation { return n.loc }

// Build groups a flat slice of header-path slices into a PathNodeObject
// tree rooted at the implicit row/item root.
func Build(slices []pathdsl.SliceInfo) (*PathNodeObject, error) {
	return buildObject(slices)
}

// group bundles together the slices sharing one first path segment
// (name + variant id), stripping that segment off for recursion.
type group struct {
	id       nodeid.MemberId
	kind     pathdsl.SegmentKind
	first    pathdsl.SliceInfo // original slice carrying the group's first segment (for location/errors)
	elements []element
}

type element struct {
	index    *int // nil for Member/LinearCollection-without-bracket-index
	remain   pathdsl.SliceInfo
	original pathdsl.SliceInfo
}

func buildObject(slices []pathdsl.SliceInfo) (*PathNodeObject, error) {
	groups, order, err := groupByFirstSegment(slices)
	if err != nil {
		return nil, err
	}

	obj := &PathNodeObject{Children: make(map[nodeid.MemberId]PathNode, len(groups)), Order: order}
	if len(slices) > 0 {
		obj.loc = slices[0].Location
		for _, s := range slices[1:] {
			obj.loc = location.Union(obj.loc, s.Location)
		}
	}

	for _, id := range order {
		g := groups[id]
		node, err := buildGroupNode(g)
		if err != nil {
			return nil, err
		}
		obj.Children[id] = node
	}
	return obj, nil
}

func groupByFirstSegment(slices []pathdsl.SliceInfo) (map[nodeid.MemberId]*group, []nodeid.MemberId, error) {
	groups := make(map[nodeid.MemberId]*group)
	var order []nodeid.MemberId

	for _, s := range slices {
		if len(s.Segments) == 0 {
			continue
		}
		first := s.Segments[0]
		id := nodeid.MemberId{Name: first.Name, VariantID: first.VariantID}

		g, ok := groups[id]
		if !ok {
			g = &group{id: id, kind: first.Kind, first: s}
			groups[id] = g
			order = append(order, id)
		} else if g.kind != first.Kind {
			return nil, nil, &TreeError{
				Location: s.Location, Location2: g.first.Location,
				Reason: fmt.Sprintf("member %q mixes incompatible path shapes", id),
			}
		}

		remainSegs := s.Segments[1:]
		remain := s
		remain.Segments = remainSegs

		g.elements = append(g.elements, element{index: first.ElementIndex, remain: remain, original: s})
	}

	return groups, order, nil
}

func buildGroupNode(g *group) (PathNode, error) {
	switch g.kind {
	case pathdsl.Member:
		return buildMemberGroup(g)
	case pathdsl.LinearCollection:
		return buildLinearGroup(g)
	case pathdsl.IndexedElement:
		return buildIndexedGroup(g)
	default:
		return nil, &TreeError{Location: g.first.Location, Reason: "unsupported root segment kind"}
	}
}

func buildMemberGroup(g *group) (PathNode, error) {
	var leaves []element
	var compounds []element
	for _, e := range g.elements {
		if len(e.remain.Segments) == 0 {
			leaves = append(leaves, e)
		} else {
			compounds = append(compounds, e)
		}
	}

	if len(leaves) > 0 && len(compounds) > 0 {
		return nil, &TreeError{
			Location: leaves[0].original.Location, Location2: compounds[0].original.Location,
			Reason: fmt.Sprintf("member %q is both a scalar and an object", g.id),
		}
	}

	if len(compounds) > 0 {
		sub := make([]pathdsl.SliceInfo, len(compounds))
		for i, e := range compounds {
			sub[i] = e.remain
		}
		return buildObject(sub)
	}

	if len(leaves) > 1 {
		return nil, &TreeError{
			Location: leaves[0].original.Location, Location2: leaves[1].original.Location,
			Reason: fmt.Sprintf("duplicate header for %q", g.id),
		}
	}
	return &PathNodeScalar{Slice: leaves[0].original}, nil
}

func buildLinearGroup(g *group) (*PathNodeCollection, error) {
	var leaf []element
	var nested []element
	for _, e := range g.elements {
		switch len(e.remain.Segments) {
		case 0:
			leaf = append(leaf, e)
		case 1:
			nested = append(nested, e)
		default:
			return nil, &TreeError{
				Location: e.original.Location,
				Reason:   fmt.Sprintf("member %q nests more than one level inside a linear collection", g.id),
			}
		}
	}

	if len(leaf) > 0 && len(nested) > 0 {
		return nil, &TreeError{
			Location: leaf[0].original.Location, Location2: nested[0].original.Location,
			Reason: fmt.Sprintf("linear collection %q mixes scalar and object elements", g.id),
		}
	}

	col := &PathNodeCollection{loc: g.first.Location}
	for _, e := range g.elements {
		col.loc = location.Union(col.loc, e.original.Location)
	}

	if len(nested) > 0 {
		col.IndexedNodes = make(map[int]PathNode)
		bySub := make(map[nodeid.MemberId][]element)
		var subOrder []nodeid.MemberId
		for _, e := range nested {
			subID := nodeid.MemberId{Name: e.remain.Segments[0].Name, VariantID: e.remain.Segments[0].VariantID}
			if _, ok := bySub[subID]; !ok {
				subOrder = append(subOrder, subID)
			}
			bySub[subID] = append(bySub[subID], e)
		}
		maxOccurrences := 0
		for _, es := range bySub {
			if len(es) > maxOccurrences {
				maxOccurrences = len(es)
			}
		}
		for idx := 0; idx < maxOccurrences; idx++ {
			var sub []pathdsl.SliceInfo
			for _, subID := range subOrder {
				es := bySub[subID]
				if idx < len(es) {
					sub = append(sub, es[idx].remain)
				}
			}
			node, err := buildObject(sub)
			if err != nil {
				return nil, err
			}
			col.IndexedNodes[idx] = node
		}
		return col, nil
	}

	if len(leaf) == 1 {
		s := leaf[0].original
		col.ScalarSlice = &s
		return col, nil
	}

	col.LinearSlices = make([]pathdsl.SliceInfo, len(leaf))
	for i, e := range leaf {
		col.LinearSlices[i] = e.original
	}
	return col, nil
}

func buildIndexedGroup(g *group) (*PathNodeCollection, error) {
	col := &PathNodeCollection{
		IndexedSlices: make(map[int]pathdsl.SliceInfo),
		IndexedNodes:  make(map[int]PathNode),
		loc:           g.first.Location,
	}

	bucketed := make(map[int][]element)
	for _, e := range g.elements {
		col.loc = location.Union(col.loc, e.original.Location)
		idx := 0
		if e.index != nil {
			idx = *e.index
		}
		bucketed[idx] = append(bucketed[idx], e)
	}

	for idx, es := range bucketed {
		var leaves, compounds []element
		for _, e := range es {
			if len(e.remain.Segments) == 0 {
				leaves = append(leaves, e)
			} else {
				compounds = append(compounds, e)
			}
		}
		if len(leaves) > 0 && len(compounds) > 0 {
			return nil, &TreeError{
				Location: leaves[0].original.Location, Location2: compounds[0].original.Location,
				Reason: fmt.Sprintf("indexed element %q[%d] is both a scalar and an object", g.id, idx),
			}
		}
		if len(compounds) > 0 {
			sub := make([]pathdsl.SliceInfo, len(compounds))
			for i, e := range compounds {
				sub[i] = e.remain
			}
			node, err := buildObject(sub)
			if err != nil {
				return nil, err
			}
			col.IndexedNodes[idx] = node
			continue
		}
		if len(leaves) > 1 {
			return nil, &TreeError{
				Location: leaves[0].original.Location, Location2: leaves[1].original.Location,
				Reason: fmt.Sprintf("duplicate header for %q[%d]", g.id, idx),
			}
		}
		col.IndexedSlices[idx] = leaves[0].original
	}

	if len(col.IndexedNodes) == 0 {
		col.IndexedNodes = nil
	}
	return col, nil
}
