package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/gcbuild/internal/identity"
)

// TOMLFileName is the fallback project config format, kept wired
// exactly as the teacher carries go-toml/v2 as an alternate config
// format alongside its primary KDL loader.
const TOMLFileName = ".gcbuild.toml"

// tomlDocument mirrors BuildParameters with TOML struct tags; kept as
// a separate type rather than tagging BuildParameters directly since
// BuildParameters' UnknownMembers and Experiments fields need a string/
// table shape on the wire that differs from their Go representation.
type tomlDocument struct {
	SourceDir       string              `toml:"source_dir"`
	SheetGlobs      []string            `toml:"sheet_globs"`
	ExcludeGlobs    []string            `toml:"exclude_globs"`
	UnknownMembers  string              `toml:"unknown_members"`
	MinCompressSize int                 `toml:"min_compress_size"`
	SchemaVersion   uint32              `toml:"schema_version"`
	Experiments     []tomlExperimentRef `toml:"experiment"`
}

type tomlExperimentRef struct {
	ExperimentID string `toml:"experiment_id"`
	VariantID    string `toml:"variant_id"`
}

// LoadTOML loads BuildParameters from <projectRoot>/.gcbuild.toml. It
// returns (nil, nil) if the file does not exist, matching LoadKDL's
// "no project file" signal.
func LoadTOML(projectRoot string) (*BuildParameters, error) {
	path := filepath.Join(projectRoot, TOMLFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var doc tomlDocument
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing TOML: %w", err)
	}

	p := Default(projectRoot)
	if doc.SourceDir != "" {
		p.SourceDir = doc.SourceDir
	}
	if len(doc.SheetGlobs) > 0 {
		p.SheetGlobs = doc.SheetGlobs
	}
	p.ExcludeGlobs = doc.ExcludeGlobs
	if doc.UnknownMembers != "" {
		policy, err := parseUnknownMemberPolicy(doc.UnknownMembers)
		if err != nil {
			return nil, err
		}
		p.UnknownMembers = policy
	}
	if doc.MinCompressSize != 0 {
		p.MinCompressSize = doc.MinCompressSize
	}
	if doc.SchemaVersion != 0 {
		p.SchemaVersion = doc.SchemaVersion
	}
	for _, e := range doc.Experiments {
		p.Experiments = append(p.Experiments, identity.ExperimentVariantPair{
			ExperimentID: e.ExperimentID,
			VariantID:    e.VariantID,
		})
	}
	return p, nil
}
