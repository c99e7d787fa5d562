// Package syntaxtree defines the typed tree a spreadsheet item is
// materialized into before binding: Scalar leaves, Collection nodes
// (whose elements may be nil, marking an explicitly skipped index), and
// Object nodes with ordered, variant-aware members.
package syntaxtree

import (
	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/nodeid"
)

// Node is the common interface of Scalar, Collection, and Object.
type Node interface {
	Location() location.SourceLocation
}

// Scalar is a leaf cell value.
type Scalar struct {
	Value string
	Loc   location.SourceLocation
}

func (s *Scalar) Location() location.SourceLocation { return s.Loc }

// Collection holds an ordered list of elements; a nil entry marks an
// index that was explicitly skipped (a gap in a sparse indexed
// collection) rather than simply absent.
type Collection struct {
	Elements []Node
	Loc      location.SourceLocation
}

func (c *Collection) Location() location.SourceLocation { return c.Loc }

// Object holds ordered, variant-scoped members. Order is insertion
// order and exists purely for deterministic iteration; it carries no
// other semantics.
type Object struct {
	Members map[nodeid.MemberId]Node
	Order   []nodeid.MemberId
	Loc     location.SourceLocation
}

func (o *Object) Location() location.SourceLocation { return o.Loc }

// NewObject returns an empty Object ready for Set.
func NewObject(loc location.SourceLocation) *Object {
	return &Object{Members: make(map[nodeid.MemberId]Node), Loc: loc}
}

// Set assigns a member, recording insertion order the first time a
// given id is set.
func (o *Object) Set(id nodeid.MemberId, n Node) {
	if _, exists := o.Members[id]; !exists {
		o.Order = append(o.Order, id)
	}
	o.Members[id] = n
}

// Delete removes a member.
func (o *Object) Delete(id nodeid.MemberId) {
	if _, exists := o.Members[id]; !exists {
		return
	}
	delete(o.Members, id)
	for i, oid := range o.Order {
		if oid == id {
			o.Order = append(o.Order[:i], o.Order[i+1:]...)
			break
		}
	}
}

// Get returns the member's node and whether it was present.
func (o *Object) Get(id nodeid.MemberId) (Node, bool) {
	n, ok := o.Members[id]
	return n, ok
}

// RootObject is one item (or one item × variant) produced by the item
// splitter: its identity tuple, its syntax tree, and — once
// post-processing has run — its resolved aliases and variant id.
type RootObject struct {
	ID        []string
	Node      *Object
	Loc       location.SourceLocation
	Aliases   string // raw "/Aliases" cell text, comma-separated; "" if absent
	VariantID string // "" denotes the baseline RootObject for this item
}

func (r *RootObject) Location() location.SourceLocation { return r.Loc }

// IDKey renders the identity tuple as a stable map key.
func (r *RootObject) IDKey() string {
	key := ""
	for i, part := range r.ID {
		if i > 0 {
			key += "\x1f"
		}
		key += part
	}
	return key
}
