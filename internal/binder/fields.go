package binder

import (
	"time"

	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
	"github.com/standardbeagle/gcbuild/internal/valueparser"
)

func scalarOf(node syntaxtree.Node) (*syntaxtree.Scalar, error) {
	s, ok := node.(*syntaxtree.Scalar)
	if !ok {
		return nil, &TypeMismatchError{Want: "scalar"}
	}
	return s, nil
}

// StringField registers a plain string member.
func StringField(set func(target any, v string)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		set(target, s.Value)
		return nil
	}
}

// BoolField registers a boolean member, parsed via valueparser.ParseBool.
func BoolField(set func(target any, v bool)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseBool(s.Value)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// IntField registers a signed integer member.
func IntField(set func(target any, v int64)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseInt(s.Value)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// FloatField registers a floating point member.
func FloatField(set func(target any, v float64)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseFloat(s.Value)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// DurationField registers a time.Duration member.
func DurationField(set func(target any, v time.Duration)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseDuration(s.Value)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// InstantField registers a time.Time member.
func InstantField(set func(target any, v time.Time)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseInstant(s.Value)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// EnumField registers a member restricted to the given allowed spellings.
func EnumField(allowed []string, set func(target any, v string)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseEnum(s.Value, allowed)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// RefField registers a MetaRef-typed member.
func RefField(set func(target any, v valueparser.Ref)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		s, err := scalarOf(node)
		if err != nil {
			return err
		}
		v, err := valueparser.ParseRef(s.Value)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// ObjectField registers a nested-object member bound through the same
// Registry under typeName.
func ObjectField(typeName string, set func(target any, v any)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		obj, ok := node.(*syntaxtree.Object)
		if !ok {
			return &TypeMismatchError{Want: "object"}
		}
		v, err := b.Bind(typeName, obj)
		if err != nil {
			return err
		}
		set(target, v)
		return nil
	}
}

// ListField registers a sequential member: every element of the bound
// Collection is parsed with parseElem, in order, and the resulting slice
// handed to set. A nil element (an explicitly skipped sparse index,
// internal/syntaxtree.Collection's own doc comment) binds to T's zero
// value rather than erroring.
func ListField[T any](parseElem func(b *Binder, node syntaxtree.Node) (T, error), set func(target any, v []T)) FieldSetter {
	return func(b *Binder, target any, node syntaxtree.Node) error {
		c, ok := node.(*syntaxtree.Collection)
		if !ok {
			return &TypeMismatchError{Want: "collection"}
		}
		out := make([]T, len(c.Elements))
		for i, el := range c.Elements {
			if el == nil {
				continue
			}
			v, err := parseElem(b, el)
			if err != nil {
				return err
			}
			out[i] = v
		}
		set(target, out)
		return nil
	}
}

// ScalarElem adapts a plain scalar-string parser for use as ListField's
// parseElem, for list<primitive> members.
func ScalarElem[T any](parse func(raw string) (T, error)) func(b *Binder, node syntaxtree.Node) (T, error) {
	return func(b *Binder, node syntaxtree.Node) (T, error) {
		var zero T
		s, err := scalarOf(node)
		if err != nil {
			return zero, err
		}
		return parse(s.Value)
	}
}

// ObjectElem adapts a registered type for use as ListField's parseElem,
// for list<Object> members (e.g. a collection of inline structures).
func ObjectElem(typeName string) func(b *Binder, node syntaxtree.Node) (any, error) {
	return func(b *Binder, node syntaxtree.Node) (any, error) {
		obj, ok := node.(*syntaxtree.Object)
		if !ok {
			return nil, &TypeMismatchError{Want: "object"}
		}
		return b.Bind(typeName, obj)
	}
}
