package syntaxtree

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/gcbuild/internal/nodeid"
)

// ExtractAliases splits a RootObject's raw "/Aliases" cell text into its
// individual alias strings, trimming whitespace and dropping empties.
func ExtractAliases(root *RootObject) []string {
	if strings.TrimSpace(root.Aliases) == "" {
		return nil
	}
	parts := strings.Split(root.Aliases, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtractVariants splits a baseline RootObject's tree into the baseline
// itself plus one sibling RootObject per distinct column-level "/:id"
// override found anywhere in the tree (nested arbitrarily deep, or
// inside collection elements). Each returned variant RootObject shares
// the baseline's identity and carries only the members that were
// actually overridden, at the same path they occupied in the baseline
// — inheriting the rest is InheritVariantValuesFromBaseline's job.
func ExtractVariants(root *RootObject) (*RootObject, []*RootObject) {
	baseObj, variantObjs, order := extractVariantsFromObject(root.Node)

	baseline := &RootObject{ID: root.ID, Node: baseObj, Loc: root.Loc, Aliases: root.Aliases}

	variants := make([]*RootObject, 0, len(order))
	for _, vid := range order {
		variants = append(variants, &RootObject{
			ID:        root.ID,
			Node:      variantObjs[vid],
			Loc:       root.Loc,
			VariantID: vid,
		})
	}
	return baseline, variants
}

func extractVariantsFromObject(obj *Object) (*Object, map[string]*Object, []string) {
	baseObj := NewObject(obj.Loc)
	variantObjs := make(map[string]*Object)
	var order []string

	ensure := func(vid string) *Object {
		v, ok := variantObjs[vid]
		if !ok {
			v = NewObject(obj.Loc)
			variantObjs[vid] = v
			order = append(order, vid)
		}
		return v
	}

	for _, id := range obj.Order {
		node := obj.Members[id]

		if id.VariantID != "" {
			ensure(id.VariantID).Set(nodeid.MemberId{Name: id.Name}, node)
			continue
		}

		switch n := node.(type) {
		case *Object:
			childBase, childVariants, childOrder := extractVariantsFromObject(n)
			baseObj.Set(id, childBase)
			for _, vid := range childOrder {
				ensure(vid).Set(id, childVariants[vid])
			}

		case *Collection:
			baseElems := make([]Node, len(n.Elements))
			variantElems := make(map[string][]Node)
			var elemOrder []string
			for i, e := range n.Elements {
				childObj, ok := e.(*Object)
				if !ok {
					baseElems[i] = e
					continue
				}
				childBase, childVariants, childOrder := extractVariantsFromObject(childObj)
				baseElems[i] = childBase
				for _, vid := range childOrder {
					arr, ok := variantElems[vid]
					if !ok {
						arr = make([]Node, len(n.Elements))
						variantElems[vid] = arr
						elemOrder = append(elemOrder, vid)
					}
					arr[i] = childVariants[vid]
				}
			}
			baseObj.Set(id, &Collection{Elements: baseElems, Loc: n.Loc})
			for _, vid := range elemOrder {
				ensure(vid).Set(id, &Collection{Elements: variantElems[vid], Loc: n.Loc})
			}

		default:
			baseObj.Set(id, node)
		}
	}

	return baseObj, variantObjs, order
}

// InheritVariantValuesFromBaseline overlays a variant RootObject's
// (possibly sparse) tree onto its baseline's tree: a blank scalar, a
// missing member, or an empty top-level collection in the variant all
// mean "inherit the baseline's value at this position" rather than
// "set it to empty" (spec.md §4.4, variant inheritance). It is used for
// both library-sheet variants (from ExtractVariants or a "/Variant" row)
// and key-value-sheet variants (from SplitKeyValueItem) — the merge
// rule is identical in both cases, so one function serves both.
func InheritVariantValuesFromBaseline(baseline *RootObject, variant *RootObject) *RootObject {
	return &RootObject{
		ID:        variant.ID,
		Node:      mergeInherit(baseline.Node, variant.Node).(*Object),
		Loc:       variant.Loc,
		Aliases:   variant.Aliases,
		VariantID: variant.VariantID,
	}
}

func mergeInherit(base, over Node) Node {
	if over == nil {
		return base
	}

	switch b := base.(type) {
	case *Scalar:
		o, ok := over.(*Scalar)
		if !ok || o.Value == "" {
			return b
		}
		return o

	case *Object:
		o, ok := over.(*Object)
		if !ok {
			return b
		}
		merged := NewObject(o.Loc)
		for _, id := range b.Order {
			if childOver, exists := o.Get(id); exists {
				merged.Set(id, mergeInherit(b.Members[id], childOver))
			} else {
				merged.Set(id, b.Members[id])
			}
		}
		for _, id := range o.Order {
			if _, exists := b.Get(id); !exists {
				merged.Set(id, o.Members[id])
			}
		}
		return merged

	case *Collection:
		o, ok := over.(*Collection)
		if !ok || len(o.Elements) == 0 {
			return b
		}
		size := len(b.Elements)
		if len(o.Elements) > size {
			size = len(o.Elements)
		}
		elems := make([]Node, size)
		copy(elems, b.Elements)
		for i, e := range o.Elements {
			if e != nil {
				elems[i] = mergeInherit(elems[i], e)
			}
		}
		return &Collection{Elements: elems, Loc: o.Loc}
	}
	return base
}

// DuplicateItemError reports two RootObjects claiming the same identity
// within the same variant.
type DuplicateItemError struct {
	ID        []string
	VariantID string
}

func (e *DuplicateItemError) Error() string {
	variant := e.VariantID
	if variant == "" {
		variant = "<baseline>"
	}
	return fmt.Sprintf("duplicate item id %v in variant %q", e.ID, variant)
}

// DetectDuplicateObjects reports an error if two RootObjects in roots
// share the same (ID, VariantID) pair.
func DetectDuplicateObjects(roots []*RootObject) error {
	seen := make(map[string]bool, len(roots))
	for _, r := range roots {
		key := r.IDKey() + "\x1f" + r.VariantID
		if seen[key] {
			return &DuplicateItemError{ID: r.ID, VariantID: r.VariantID}
		}
		seen[key] = true
	}
	return nil
}
