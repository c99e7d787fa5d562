// Package tagfields is the by-tag-id counterpart to internal/binder's
// by-name field registry. Structures serialized by internal/tagcodec
// and patched by internal/patch's StructurePatch both need to set a
// member identified by its MetaTag number rather than its source name,
// since the two ends of a patch may be compiled against slightly
// different sheet revisions (schema drift tolerance, spec.md §4.6).
// Grounded on the same registered-setter replacement for reflection as
// internal/binder (cmmoran-apimodelgen's internal/parser/mapper.go),
// keyed by tag id instead of name.
package tagfields

import "fmt"

// Setter assigns one tagged member onto target.
type Setter func(target any, value any)

// Getter reads one tagged member off source.
type Getter func(source any) any

// Kind names a member's Go representation so a wire codec can pick the
// correct tagcodec conversion without guessing from a dynamic type
// switch — needed because more than one Kind shares the same wire
// type (int64, time.Duration, time.Time, and float64's raw bit pattern
// all travel as tagcodec.LongValue, and only the declared Kind says
// which one to decode back into).
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat64
	KindBytes
	KindDuration
	KindInstant
	// KindRaw marks a member whose Getter already returns a built
	// tagcodec.Value (a nested struct, list, map, or enum) and whose
	// Setter accepts one back — used for compound members, where the
	// accessor closures themselves own the recursive encode/decode.
	KindRaw
)

// Field is one member's accessor pair, registered under its MetaTag id.
type Field struct {
	Get  Getter
	Set  Setter
	Kind Kind
}

// TagBinding is one struct type's set of tag-numbered members, plus the
// name each tag id was declared under (for construction-time lookup by
// name, spec.md §4.6's StructurePatch construction rule).
type TagBinding struct {
	New    func() any
	Fields map[int]Field
	Names  map[string]int
}

// Registry holds the TagBindings known to one Engine instance, keyed by
// the same type name internal/binder.Registry uses.
type Registry struct {
	bindings map[string]*TagBinding
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]*TagBinding)}
}

// Register adds or replaces the TagBinding for typeName.
func (r *Registry) Register(typeName string, b *TagBinding) {
	r.bindings[typeName] = b
}

// Lookup returns the TagBinding registered for typeName, if any.
func (r *Registry) Lookup(typeName string) (*TagBinding, bool) {
	b, ok := r.bindings[typeName]
	return b, ok
}

// UnknownMemberNameError reports a patch constructed with a member name
// that is not registered on the target TagBinding — rejected at
// construction time, unlike an unknown tag id at apply time, which is
// tolerated as schema drift (spec.md §4.6).
type UnknownMemberNameError struct {
	Name string
}

func (e *UnknownMemberNameError) Error() string {
	return fmt.Sprintf("unknown member name %q", e.Name)
}
