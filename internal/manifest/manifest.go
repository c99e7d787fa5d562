// Package manifest defines the payload of an archive's "_metadata"
// entry (spec.md §6): the build parameters that produced the archive,
// a summary of the build report, and the parent archive's id/hash for
// incremental builds. Grounded on cmmoran-apimodelgen's
// pkg/manifest/manifest.go (YAML-on-disk lineage tracking across
// generated snapshots), translated here from a file on disk to a
// YAML-encoded archive entry carried inside the archive itself.
package manifest

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
)

// EntryName is the reserved, always-last entry name an archive's
// metadata is stored under (spec.md §6).
const EntryName = "_metadata"

// ReportSummary tallies one build's BuildLog by severity, the compact
// form embedded in BuildMetadata rather than the full message list
// (the full report is for the console, not for every archive reader).
type ReportSummary struct {
	Infos    int `yaml:"infos"`
	Warnings int `yaml:"warnings"`
	Errors   int `yaml:"errors"`
}

// Summarize counts log's messages by severity.
func Summarize(log *builderrors.BuildLog) ReportSummary {
	var s ReportSummary
	for _, m := range log.Messages {
		switch m.Severity {
		case builderrors.Info:
			s.Infos++
		case builderrors.Warning:
			s.Warnings++
		case builderrors.Error:
			s.Errors++
		}
	}
	return s
}

// BuildMetadata is the _metadata entry's decoded payload (spec.md §6 /
// SPEC_FULL.md §6): the lineage record a build leaves behind, named
// only by the fields needed to answer "what produced this archive, and
// what did it build from".
type BuildMetadata struct {
	CreatedAt time.Time     `yaml:"created_at"`
	ParentID  string        `yaml:"parent_id,omitempty"` // hash128 hex of the parent archive, empty if none
	Report    ReportSummary `yaml:"report"`

	SourceDir      string   `yaml:"source_dir"`
	SheetGlobs     []string `yaml:"sheet_globs,omitempty"`
	ExcludeGlobs   []string `yaml:"exclude_globs,omitempty"`
	Experiments    []string `yaml:"experiments,omitempty"` // "experimentId/variantId" pairs
	UnknownMembers string   `yaml:"unknown_members"`
	SchemaVersion  uint32   `yaml:"schema_version"`
}

// Encode serializes m to YAML, the archive entry's on-wire form.
func (m *BuildMetadata) Encode() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return data, nil
}

// Decode parses a _metadata entry's bytes back into a BuildMetadata.
func Decode(data []byte) (*BuildMetadata, error) {
	var m BuildMetadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	return &m, nil
}
