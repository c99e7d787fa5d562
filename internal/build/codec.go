package build

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/standardbeagle/gcbuild/internal/tagcodec"
	"github.com/standardbeagle/gcbuild/internal/tagfields"
)

// UnknownTagTypeError reports a type name with no registered TagBinding.
type UnknownTagTypeError struct{ TypeName string }

func (e *UnknownTagTypeError) Error() string {
	return fmt.Sprintf("build: no TagBinding registered for %q", e.TypeName)
}

// UnsupportedFieldKindError reports a tagfields.Kind EncodeValue/
// DecodeValue has no conversion rule for.
type UnsupportedFieldKindError struct{ Kind tagfields.Kind }

func (e *UnsupportedFieldKindError) Error() string {
	return fmt.Sprintf("build: unsupported tagfields.Kind %d", e.Kind)
}

// EncodeValue renders v, a value of the domain type registered under
// typeName, as a tagcodec.StructValue (spec.md §6): it walks typeName's
// tagfields.TagBinding in ascending tag-id order — required for a
// deterministic archive hash across identical builds — and wraps each
// Getter's result as the matching wire Value according to the field's
// declared Kind. tagcodec has no bool or float wire type, so a
// KindBool member folds into IntValue (0/1) and a KindFloat64 member
// into LongValue via its raw bit pattern; DecodeValue reverses both.
// A KindRaw member's Getter is expected to return an already-built
// tagcodec.Value itself (typically by calling EncodeValue for a nested
// struct's own type, or hand-assembling a ListValue), so compound
// members compose without this function needing to know every nested
// type name up front.
func EncodeValue(tags *tagfields.Registry, typeName string, v any) (tagcodec.Value, error) {
	tb, ok := tags.Lookup(typeName)
	if !ok {
		return nil, &UnknownTagTypeError{TypeName: typeName}
	}

	tagIDs := make([]int, 0, len(tb.Fields))
	for id := range tb.Fields {
		tagIDs = append(tagIDs, id)
	}
	sort.Ints(tagIDs)

	members := make([]tagcodec.StructMember, 0, len(tagIDs))
	for _, id := range tagIDs {
		field := tb.Fields[id]
		val, err := toWireValue(field.Kind, field.Get(v))
		if err != nil {
			return nil, fmt.Errorf("%s: tag %d: %w", typeName, id, err)
		}
		members = append(members, tagcodec.StructMember{TagID: uint32(id), Value: val})
	}
	return tagcodec.StructValue{Version: 1, Members: members}, nil
}

// DecodeValue reverses EncodeValue: it constructs a fresh typeName value
// via its TagBinding.New and sets every member the wire value names,
// silently skipping any tag id the current binding no longer has — the
// same removed-member read tolerance spec.md §4.6 requires of
// StructurePatch.Apply.
func DecodeValue(tags *tagfields.Registry, typeName string, val tagcodec.Value) (any, error) {
	tb, ok := tags.Lookup(typeName)
	if !ok {
		return nil, &UnknownTagTypeError{TypeName: typeName}
	}
	sv, ok := val.(tagcodec.StructValue)
	if !ok {
		return nil, fmt.Errorf("%s: expected a struct wire value, got %T", typeName, val)
	}

	target := tb.New()
	for _, m := range sv.Members {
		field, ok := tb.Fields[int(m.TagID)]
		if !ok {
			continue
		}
		raw, err := fromWireValue(field.Kind, m.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: tag %d: %w", typeName, m.TagID, err)
		}
		field.Set(target, raw)
	}
	return target, nil
}

func toWireValue(kind tagfields.Kind, raw any) (tagcodec.Value, error) {
	switch kind {
	case tagfields.KindString:
		return tagcodec.StringValue(raw.(string)), nil
	case tagfields.KindBool:
		if raw.(bool) {
			return tagcodec.IntValue(1), nil
		}
		return tagcodec.IntValue(0), nil
	case tagfields.KindInt32:
		return tagcodec.IntValue(raw.(int32)), nil
	case tagfields.KindInt64:
		return tagcodec.LongValue(raw.(int64)), nil
	case tagfields.KindFloat64:
		return tagcodec.LongValue(int64(math.Float64bits(raw.(float64)))), nil
	case tagfields.KindBytes:
		return tagcodec.BytesValue(raw.([]byte)), nil
	case tagfields.KindDuration:
		return tagcodec.LongValue(int64(raw.(time.Duration))), nil
	case tagfields.KindInstant:
		return tagcodec.LongValue(raw.(time.Time).UnixMicro()), nil
	case tagfields.KindRaw:
		v, ok := raw.(tagcodec.Value)
		if !ok {
			return nil, fmt.Errorf("KindRaw getter returned %T, want tagcodec.Value", raw)
		}
		return v, nil
	default:
		return nil, &UnsupportedFieldKindError{Kind: kind}
	}
}

func fromWireValue(kind tagfields.Kind, val tagcodec.Value) (any, error) {
	switch kind {
	case tagfields.KindString:
		return string(val.(tagcodec.StringValue)), nil
	case tagfields.KindBool:
		return int64(val.(tagcodec.IntValue)) != 0, nil
	case tagfields.KindInt32:
		return int32(val.(tagcodec.IntValue)), nil
	case tagfields.KindInt64:
		return int64(val.(tagcodec.LongValue)), nil
	case tagfields.KindFloat64:
		return math.Float64frombits(uint64(val.(tagcodec.LongValue))), nil
	case tagfields.KindBytes:
		return []byte(val.(tagcodec.BytesValue)), nil
	case tagfields.KindDuration:
		return time.Duration(val.(tagcodec.LongValue)), nil
	case tagfields.KindInstant:
		return time.UnixMicro(int64(val.(tagcodec.LongValue))).UTC(), nil
	case tagfields.KindRaw:
		return val, nil
	default:
		return nil, &UnsupportedFieldKindError{Kind: kind}
	}
}
