// Package pathdsl parses one header cell's text into a path of segments
// plus tag annotations, per the header-path DSL:
//
//	header     := ( path )? ( '#' tag )*
//	path       := segment ( '.' segment )*
//	segment    := IDENT ( '[' INT ']' | '[' ']' )?
//	tag        := IDENT ( ':' tagValue )?
//
// It also recognizes the three reserved header shapes: "/Variant",
// "/Aliases", and variant-override columns beginning with "/:".
package pathdsl

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind distinguishes the four shapes a path segment can take.
type SegmentKind int

const (
	Root SegmentKind = iota
	Member
	LinearCollection
	IndexedElement
)

func (k SegmentKind) String() string {
	switch k {
	case Root:
		return "Root"
	case Member:
		return "Member"
	case LinearCollection:
		return "LinearCollection"
	case IndexedElement:
		return "IndexedElement"
	default:
		return "Unknown"
	}
}

// PathSegment is one dot-separated component of a header path.
type PathSegment struct {
	Name         string
	VariantID    string // "" for baseline; set by variant-override inheritance
	Kind         SegmentKind
	ElementIndex *int // set only when Kind == IndexedElement
}

// Tag is a "#name" or "#name:value" annotation trailing a header.
type Tag struct {
	Name     string
	Value    string
	HasValue bool
}

var knownTags = map[string]bool{
	"key":     true,
	"comment": true,
}

// BadHeaderError reports a header cell that does not parse under the
// grammar above.
type BadHeaderError struct {
	Raw    string
	Reason string
}

func (e *BadHeaderError) Error() string {
	return fmt.Sprintf("bad header %q: %s", e.Raw, e.Reason)
}

func badHeader(raw, reason string) error {
	return &BadHeaderError{Raw: raw, Reason: reason}
}

// HeaderKind classifies the shape a parsed header cell takes.
type HeaderKind int

const (
	KindPath HeaderKind = iota
	KindVariantOverride
	KindReservedVariant
	KindReservedAliases
	KindCommentOnly
)

// HeaderCell is the parse result of one header cell.
type HeaderCell struct {
	Kind       HeaderKind
	Segments   []PathSegment
	Tags       []Tag
	VariantIDs []string // populated only for KindVariantOverride
}

// HasTag reports whether the header carries a tag with the given name.
func (h *HeaderCell) HasTag(name string) bool {
	for _, t := range h.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// IsKey reports whether this header carries "#key".
func (h *HeaderCell) IsKey() bool { return h.HasTag("key") }

// FullPath renders the segment path back to dotted form, ignoring tags;
// used for diagnostics and for SliceInfo.FullPath.
func (h *HeaderCell) FullPath() string {
	parts := make([]string, len(h.Segments))
	for i, s := range h.Segments {
		switch s.Kind {
		case LinearCollection:
			parts[i] = s.Name + "[]"
		case IndexedElement:
			parts[i] = fmt.Sprintf("%s[%d]", s.Name, *s.ElementIndex)
		default:
			parts[i] = s.Name
		}
	}
	return strings.Join(parts, ".")
}

// ParseHeaderCell parses a single header cell's raw text.
func ParseHeaderCell(raw string) (*HeaderCell, error) {
	trimmed := strings.TrimSpace(raw)

	switch trimmed {
	case "/Variant":
		return &HeaderCell{Kind: KindReservedVariant}, nil
	case "/Aliases":
		return &HeaderCell{Kind: KindReservedAliases}, nil
	}

	if strings.HasPrefix(trimmed, "/:") {
		ids := splitNonEmpty(trimmed[2:], ',')
		if len(ids) == 0 {
			return nil, badHeader(raw, "variant override column names no variants")
		}
		return &HeaderCell{Kind: KindVariantOverride, VariantIDs: ids}, nil
	}

	pathRaw, tagsRaw := splitPathAndTags(trimmed)

	var segments []PathSegment
	if pathRaw != "" {
		var err error
		segments, err = parseSegments(raw, pathRaw)
		if err != nil {
			return nil, err
		}
	}

	tags, err := parseTags(raw, tagsRaw)
	if err != nil {
		return nil, err
	}

	if len(segments) == 0 {
		for _, t := range tags {
			if t.Name != "comment" {
				return nil, badHeader(raw, "tags on an empty path are only allowed for #comment")
			}
		}
		if len(tags) > 0 {
			return &HeaderCell{Kind: KindCommentOnly, Tags: tags}, nil
		}
		return nil, badHeader(raw, "empty header")
	}

	return &HeaderCell{Kind: KindPath, Segments: segments, Tags: tags}, nil
}

func splitPathAndTags(s string) (path string, tags string) {
	idx := strings.IndexByte(s, '#')
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

func parseSegments(raw, pathRaw string) ([]PathSegment, error) {
	rawSegments := strings.Split(pathRaw, ".")
	segments := make([]PathSegment, 0, len(rawSegments))
	for _, rs := range rawSegments {
		if rs == "" {
			return nil, badHeader(raw, "empty-named path segment")
		}
		seg, err := parseSegment(raw, rs)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(raw, rs string) (PathSegment, error) {
	lb := strings.IndexByte(rs, '[')
	if lb < 0 {
		if !isValidIdent(rs) {
			return PathSegment{}, badHeader(raw, fmt.Sprintf("invalid segment name %q", rs))
		}
		return PathSegment{Name: rs, Kind: Member}, nil
	}

	name := rs[:lb]
	if name == "" {
		return PathSegment{}, badHeader(raw, "empty-named path segment")
	}
	if !isValidIdent(name) {
		return PathSegment{}, badHeader(raw, fmt.Sprintf("invalid segment name %q", name))
	}

	rb := strings.IndexByte(rs, ']')
	if rb < 0 || rb < lb {
		return PathSegment{}, badHeader(raw, "unbalanced brackets")
	}
	if rb != len(rs)-1 {
		return PathSegment{}, badHeader(raw, "trailing characters after ']'")
	}

	inner := rs[lb+1 : rb]
	if inner == "" {
		return PathSegment{Name: name, Kind: LinearCollection}, nil
	}

	idx, err := strconv.Atoi(inner)
	if err != nil || idx < 0 {
		return PathSegment{}, badHeader(raw, fmt.Sprintf("invalid element index %q", inner))
	}
	return PathSegment{Name: name, Kind: IndexedElement, ElementIndex: &idx}, nil
}

func parseTags(raw, tagsRaw string) ([]Tag, error) {
	if tagsRaw == "" {
		return nil, nil
	}
	// tagsRaw always starts with '#'.
	chunks := strings.Split(tagsRaw, "#")[1:]
	tags := make([]Tag, 0, len(chunks))
	for _, c := range chunks {
		name, value, hasValue := c, "", false
		if idx := strings.IndexByte(c, ':'); idx >= 0 {
			name = c[:idx]
			value = strings.TrimSpace(c[idx+1:])
			hasValue = true
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, badHeader(raw, "empty tag name")
		}
		if !knownTags[name] {
			return nil, badHeader(raw, fmt.Sprintf("unknown tag %q", name))
		}
		tags = append(tags, Tag{Name: name, Value: value, HasValue: hasValue})
	}
	return tags, nil
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return false
		}
	}
	return true
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	for _, part := range strings.Split(s, string(sep)) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
