package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
)

func TestSummarize(t *testing.T) {
	log := &builderrors.BuildLog{}
	log.Infof(builderrors.Structural, nil, "info")
	log.Warnf(builderrors.Semantic, nil, "warn")
	log.Errorf(builderrors.Reference, nil, "err")
	log.Errorf(builderrors.Reference, nil, "err2")

	s := Summarize(log)
	assert.Equal(t, ReportSummary{Infos: 1, Warnings: 1, Errors: 2}, s)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &BuildMetadata{
		CreatedAt:      time.UnixMicro(42).UTC(),
		ParentID:       "abc123",
		Report:         ReportSummary{Infos: 1},
		SourceDir:      "sheets/",
		SheetGlobs:     []string{"*.csv"},
		Experiments:    []string{"expA/v1"},
		UnknownMembers: "Warn",
		SchemaVersion:  4,
	}
	data, err := m.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, m.ParentID, decoded.ParentID)
	assert.Equal(t, m.SourceDir, decoded.SourceDir)
	assert.Equal(t, m.Experiments, decoded.Experiments)
	assert.Equal(t, m.SchemaVersion, decoded.SchemaVersion)
}

func TestDecodeInvalidYAML(t *testing.T) {
	_, err := Decode([]byte("created_at: [unterminated"))
	require.Error(t, err)
}
