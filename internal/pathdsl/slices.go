package pathdsl

import (
	"github.com/standardbeagle/gcbuild/internal/location"
)

// SliceInfo is one column (library sheets) or one row (key-value sheets)
// of a spreadsheet, fully parsed: its segment path, its tags, and the
// cell range it occupies.
type SliceInfo struct {
	Index    int
	FullPath string
	Segments []PathSegment
	Tags     []Tag
	Location location.SourceLocation
}

// IsKey reports whether this slice carries the "#key" tag.
func (s SliceInfo) IsKey() bool {
	for _, t := range s.Tags {
		if t.Name == "key" {
			return true
		}
	}
	return false
}

// IsComment reports whether this slice carries the "#comment" tag (and
// should be ignored by every downstream stage).
func (s SliceInfo) IsComment() bool {
	for _, t := range s.Tags {
		if t.Name == "comment" {
			return true
		}
	}
	return false
}

// VariantHeader describes one reserved "/Variant" slice's position.
type VariantHeader struct {
	Index    int
	Location location.SourceLocation
}

// AliasesHeader describes one reserved "/Aliases" slice's position.
type AliasesHeader struct {
	Index    int
	Location location.SourceLocation
}

// BuildResult is the outcome of parsing one row of header cells.
type BuildResult struct {
	Slices  []SliceInfo
	Variant *VariantHeader
	Aliases *AliasesHeader
}

// LocFunc resolves the SourceLocation of the header cell at the given
// index (column for library sheets, row for key-value sheets).
type LocFunc func(index int) location.SourceLocation

// BuildSliceInfos parses every header cell left-to-right (or top-to-
// bottom, for key-value sheets), applying variant-override inheritance:
// a column beginning with "/:" takes the path of the nearest preceding
// non-variant, non-comment column and stamps every segment's terminal
// member with the override's variant ids.
//
// A variant-override column with no preceding path column is a
// structural error (spec.md §8 "Variant column only, no baseline
// column").
func BuildSliceInfos(headers []string, loc LocFunc) (*BuildResult, error) {
	result := &BuildResult{}
	var lastPath []PathSegment
	haveLastPath := false

	for i, raw := range headers {
		cell, err := ParseHeaderCell(raw)
		if err != nil {
			return nil, &location.LocatedErr{Location: loc(i), Err: err}
		}

		switch cell.Kind {
		case KindReservedVariant:
			result.Variant = &VariantHeader{Index: i, Location: loc(i)}
			continue
		case KindReservedAliases:
			result.Aliases = &AliasesHeader{Index: i, Location: loc(i)}
			continue
		case KindCommentOnly:
			continue
		case KindVariantOverride:
			if !haveLastPath {
				return nil, &location.LocatedErr{Location: loc(i), Err: badHeader(raw, "variant override column has no preceding path column to inherit")}
			}
			for _, vid := range cell.VariantIDs {
				stamped := stampVariant(lastPath, vid)
				result.Slices = append(result.Slices, SliceInfo{
					Index:    i,
					FullPath: pathString(stamped),
					Segments: stamped,
					Location: loc(i),
				})
			}
			continue
		case KindPath:
			result.Slices = append(result.Slices, SliceInfo{
				Index:    i,
				FullPath: cell.FullPath(),
				Segments: cell.Segments,
				Tags:     cell.Tags,
				Location: loc(i),
			})
			lastPath = cell.Segments
			haveLastPath = true
		}
	}

	return result, nil
}

// stampVariant returns a copy of segs with the terminal segment's
// VariantID set to vid.
func stampVariant(segs []PathSegment, vid string) []PathSegment {
	out := cloneSegments(segs)
	if len(out) > 0 {
		out[len(out)-1].VariantID = vid
	}
	return out
}

func cloneSegments(segs []PathSegment) []PathSegment {
	out := make([]PathSegment, len(segs))
	copy(out, segs)
	return out
}

func pathString(segs []PathSegment) string {
	h := &HeaderCell{Segments: segs}
	return h.FullPath()
}
