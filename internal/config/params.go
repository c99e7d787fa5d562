// Package config loads the engine's BuildParameters (SPEC_FULL.md §3):
// which sheets to compile, which experiment variants to validate, and
// the handful of knobs the output binder and archive codec need. The
// primary format is KDL (internal/config/kdl.go), grounded on the
// teacher's own `.lci.kdl` loader (internal/config's former
// kdl_config.go); a TOML fallback (internal/config/toml.go) is kept
// wired since the teacher also depends on go-toml/v2.
package config

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/gcbuild/internal/binder"
	"github.com/standardbeagle/gcbuild/internal/identity"
)

// BuildParameters is the full set of inputs one archive build needs
// beyond the sheets themselves (SPEC_FULL.md §3).
type BuildParameters struct {
	SourceDir       string
	SheetGlobs      []string
	ExcludeGlobs    []string
	Experiments     []identity.ExperimentVariantPair
	UnknownMembers  binder.UnknownMemberPolicy
	MinCompressSize int
	SchemaVersion   uint32
}

// DefaultMinCompressSize is the byte threshold under which an archive
// entry is stored uncompressed (spec.md §4.7).
const DefaultMinCompressSize = 256

// CurrentSchemaVersion is the archive header schema version this
// engine writes; readers accept any version but only recompute the
// archive hash for schemaVersion < 4 (spec.md §4.7).
const CurrentSchemaVersion = 4

// Default returns a BuildParameters with the engine's built-in
// defaults, the same values the teacher's config.Load falls back to
// when no project file is present.
func Default(sourceDir string) *BuildParameters {
	return &BuildParameters{
		SourceDir:       sourceDir,
		SheetGlobs:      []string{"*.csv"},
		UnknownMembers:  binder.Warn,
		MinCompressSize: DefaultMinCompressSize,
		SchemaVersion:   CurrentSchemaVersion,
	}
}

// MatchesSheet reports whether relPath (slash-separated, relative to
// SourceDir) is included by SheetGlobs and not excluded by ExcludeGlobs,
// using doublestar glob matching exactly as the teacher's gitignore
// filtering does for source files (internal/config/gitignore.go).
func (p *BuildParameters) MatchesSheet(relPath string) bool {
	included := len(p.SheetGlobs) == 0
	for _, g := range p.SheetGlobs {
		if ok, _ := doublestar.Match(g, relPath); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, g := range p.ExcludeGlobs {
		if ok, _ := doublestar.Match(g, relPath); ok {
			return false
		}
	}
	return true
}
