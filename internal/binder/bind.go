package binder

import (
	"fmt"

	buildlog "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/nodeid"
	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
)

// UnknownMemberPolicy controls how the binder reacts to an Object member
// with no corresponding FieldSetter on its TypeBinding.
type UnknownMemberPolicy int

const (
	Ignore UnknownMemberPolicy = iota
	Warn
	Error
)

// TypeMismatchError reports a member whose syntax-tree node shape did
// not match what its FieldSetter expected (e.g. a list where a scalar
// was required).
type TypeMismatchError struct {
	Want string
}

func (e *TypeMismatchError) Error() string { return fmt.Sprintf("expected %s", e.Want) }

// UnknownTypeError reports a type name with no registered TypeBinding.
type UnknownTypeError struct {
	TypeName string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no TypeBinding registered for %q", e.TypeName)
}

// MissingDiscriminatorError reports an abstract TypeBinding whose
// DerivedBy member was absent from the object being bound.
type MissingDiscriminatorError struct {
	Member string
}

func (e *MissingDiscriminatorError) Error() string {
	return fmt.Sprintf("missing discriminator member %q", e.Member)
}

// Binder binds Objects against a Registry, accumulating every failure
// into a BuildLog rather than ever returning a Go error to escape the
// bind of one item — a single bad member must not abort the whole build
// (spec.md §4.5: "no exception is allowed to escape the binder").
type Binder struct {
	Registry *Registry
	Log      *buildlog.BuildLog
	Unknown  UnknownMemberPolicy
}

// New returns a Binder over reg, logging to log under policy.
func New(reg *Registry, log *buildlog.BuildLog, policy UnknownMemberPolicy) *Binder {
	return &Binder{Registry: reg, Log: log, Unknown: policy}
}

// Bind constructs and populates a value of the type registered as
// typeName from obj. Members are visited in obj.Order — insertion
// order — never reordered, per spec.md §4.5's determinism requirement.
func (b *Binder) Bind(typeName string, obj *syntaxtree.Object) (any, error) {
	binding, ok := b.Registry.Lookup(typeName)
	if !ok {
		return nil, &UnknownTypeError{TypeName: typeName}
	}
	discriminator := ""
	if binding.DerivedBy != "" {
		discriminator = binding.DerivedBy
		derived, err := b.resolveDerived(binding, obj)
		if err != nil {
			return nil, err
		}
		binding = derived
	}

	target := binding.New()
	for _, id := range obj.Order {
		if !id.IsBaseline() {
			// Variant overrides are resolved into the baseline tree by
			// InheritVariantValuesFromBaseline (§4.4) before binding;
			// a lingering non-baseline member here means the caller
			// bound a tree that never went through that step.
			continue
		}
		if id.Name == discriminator {
			continue
		}
		node, _ := obj.Get(id)
		setter, ok := binding.Fields[id.Name]
		if !ok {
			b.reportUnknown(id, node, typeName)
			continue
		}
		if err := setter(b, target, node); err != nil {
			loc := node.Location()
			b.Log.CauseErrorf(buildlog.Semantic, &loc, err, "binding member %q of %q", id.Name, typeName)
		}
	}
	return target, nil
}

func (b *Binder) resolveDerived(binding *TypeBinding, obj *syntaxtree.Object) (*TypeBinding, error) {
	node, ok := obj.Get(nodeid.MemberId{Name: binding.DerivedBy})
	if !ok {
		return nil, &MissingDiscriminatorError{Member: binding.DerivedBy}
	}
	scalar, ok := node.(*syntaxtree.Scalar)
	if !ok {
		return nil, &TypeMismatchError{Want: "scalar discriminator for " + binding.DerivedBy}
	}
	derived, ok := b.Registry.Lookup(scalar.Value)
	if !ok {
		return nil, &UnknownTypeError{TypeName: scalar.Value}
	}
	return derived, nil
}

func (b *Binder) reportUnknown(id nodeid.MemberId, node syntaxtree.Node, typeName string) {
	if b.Unknown == Ignore {
		return
	}
	loc := node.Location()
	if b.Unknown == Error {
		b.Log.Errorf(buildlog.Semantic, &loc, "unknown member %q for type %q", id.Name, typeName)
		return
	}
	b.Log.Warnf(buildlog.Semantic, &loc, "unknown member %q for type %q", id.Name, typeName)
}
