package patch

import "github.com/standardbeagle/gcbuild/internal/tagfields"

// NamedReplacement is one (member name, value) pair used to construct a
// StructurePatch by name instead of by raw tag id.
type NamedReplacement struct {
	Name  string
	Value any
}

// StructurePatch holds replacement values for some members of a single
// key-value structure, addressed by MetaTag id (spec.md §3/§4.6).
type StructurePatch struct {
	TypeName      string
	replacedOrder []int
	replaced      map[int]any
}

// NewStructurePatch returns an empty StructurePatch for typeName.
func NewStructurePatch(typeName string) *StructurePatch {
	return &StructurePatch{TypeName: typeName, replaced: make(map[int]any)}
}

// NewStructurePatchFromNames constructs a StructurePatch by resolving
// each replacement's member name against binding; an unknown name is
// rejected immediately, per spec.md §4.6 ("unknown names are rejected
// at construction time"), unlike an unknown tag id at Apply time.
func NewStructurePatchFromNames(typeName string, binding *tagfields.TagBinding, replacements []NamedReplacement) (*StructurePatch, error) {
	p := NewStructurePatch(typeName)
	for _, r := range replacements {
		tagID, ok := binding.Names[r.Name]
		if !ok {
			return nil, &tagfields.UnknownMemberNameError{Name: r.Name}
		}
		p.SetReplacementByTagID(tagID, r.Value)
	}
	return p, nil
}

// SetReplacementByTagID registers a replacement for the member whose
// MetaTag id is tagID.
func (p *StructurePatch) SetReplacementByTagID(tagID int, value any) {
	if _, exists := p.replaced[tagID]; !exists {
		p.replacedOrder = append(p.replacedOrder, tagID)
	}
	p.replaced[tagID] = value
}

// ReplacedTagIDs returns the replaced member tag ids in registration order.
func (p *StructurePatch) ReplacedTagIDs() []int {
	return p.replacedOrder
}

// Apply sets each replaced member of target by tag id, silently
// tolerating a tag id no longer present on binding — a structure patch
// may outlive a schema change that removed the member it targeted
// (spec.md §4.6 schema drift tolerance).
func (p *StructurePatch) Apply(target any, binding *tagfields.TagBinding) {
	for _, tagID := range p.replacedOrder {
		field, ok := binding.Fields[tagID]
		if !ok {
			continue
		}
		field.Set(target, p.replaced[tagID])
	}
}
