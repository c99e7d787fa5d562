package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/gcbuild/internal/binder"
)

func TestLoadKDL(t *testing.T) {
	dir := t.TempDir()
	content := `
source_dir "configs"
sheet_globs "*.csv" "*.tsv"
exclude_globs "*.bak.csv"
unknown_members "error"
min_compress_size 512
schema_version 4
experiment "expA" "v1"
experiment "expA" "v2"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFileName), []byte(content), 0o644))

	p, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "configs", p.SourceDir)
	assert.Equal(t, []string{"*.csv", "*.tsv"}, p.SheetGlobs)
	assert.Equal(t, []string{"*.bak.csv"}, p.ExcludeGlobs)
	assert.Equal(t, binder.Error, p.UnknownMembers)
	assert.Equal(t, 512, p.MinCompressSize)
	assert.Equal(t, uint32(4), p.SchemaVersion)
	require.Len(t, p.Experiments, 2)
	assert.Equal(t, "expA", p.Experiments[0].ExperimentID)
	assert.Equal(t, "v1", p.Experiments[0].VariantID)
}

func TestLoadKDLMissingFileReturnsNil(t *testing.T) {
	p, err := LoadKDL(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
source_dir = "configs"
sheet_globs = ["*.csv"]
unknown_members = "warn"
min_compress_size = 1024

[[experiment]]
experiment_id = "expA"
variant_id = "v1"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName), []byte(content), 0o644))

	p, err := LoadTOML(dir)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "configs", p.SourceDir)
	assert.Equal(t, 1024, p.MinCompressSize)
	require.Len(t, p.Experiments, 1)
	assert.Equal(t, "expA", p.Experiments[0].ExperimentID)
}

func TestLoadFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	p, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, DefaultMinCompressSize, p.MinCompressSize)
	assert.Equal(t, CurrentSchemaVersion, p.SchemaVersion)
}

func TestLoadPrefersKDLOverTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KDLFileName), []byte(`min_compress_size 111`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFileName), []byte(`min_compress_size = 222`), 0o644))

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 111, p.MinCompressSize)
}

func TestMatchesSheet(t *testing.T) {
	p := Default(".")
	p.SheetGlobs = []string{"**/*.csv"}
	p.ExcludeGlobs = []string{"**/*.bak.csv"}

	assert.True(t, p.MatchesSheet("items/Fruits.csv"))
	assert.False(t, p.MatchesSheet("items/Fruits.bak.csv"))
	assert.False(t, p.MatchesSheet("items/Fruits.tsv"))
}
