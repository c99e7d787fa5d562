package build

import (
	"context"
	"time"

	"github.com/standardbeagle/gcbuild/internal/archive"
	"github.com/standardbeagle/gcbuild/internal/binder"
	"github.com/standardbeagle/gcbuild/internal/config"
	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/manifest"
	"github.com/standardbeagle/gcbuild/internal/store"
)

// Result is the outcome of one archive build attempt: the assembled
// Archive (nil unless the build reached the final gate with no errors),
// the full BuildLog, and the per-variant validation results (useful to
// a caller that wants validation detail even on failure).
type Result struct {
	Archive     *archive.Archive
	Log         *builderrors.BuildLog
	Validations []*ValidationResult
}

func unknownMemberName(p binder.UnknownMemberPolicy) string {
	switch p {
	case binder.Ignore:
		return "Ignore"
	case binder.Warn:
		return "Warn"
	case binder.Error:
		return "Error"
	default:
		return "Warn"
	}
}

// BuildArchive drives the engine end to end (spec.md §4.10): sheet
// discovery and parsing, per-item binding, variant-aware patch
// extraction into the deduplicating store, sequential specialization
// construction followed by parallel per-variant validation, and final
// archive assembly. parent, if non-nil, is an incremental build's
// previous archive; any named entry this build did not regenerate is
// copied forward from it unchanged (spec.md §6's incremental build
// note). The build only bails at the two gates spec.md §7 describes:
// after loading (a sheet-level Structural/Syntactic/Semantic error
// makes the rest of the build meaningless) and after validation (a
// Reference/Patch error found only once variants are specialized).
func (e *Engine) BuildArchive(ctx context.Context, params *config.BuildParameters, createdAt time.Time, parentID string, parent *archive.Archive) (*Result, error) {
	log := &builderrors.BuildLog{}

	concrete := e.loadLibraries(params, log)
	if builderrors.NewBuildFailed(log) != nil {
		return &Result{Log: log}, nil
	}

	handles := make([]store.LibraryHandle, 0, len(concrete))
	for _, lib := range concrete {
		handles = append(handles, store.NewHandle(lib))
	}
	top := store.NewTopLevelDeduplicationStorage(handles)

	specs, err := buildSpecializations(top, params.Experiments)
	if err != nil {
		log.CauseErrorf(builderrors.Reference, nil, err, "building specializations")
		return &Result{Log: log}, nil
	}

	results, err := validateVariants(ctx, top, params.Experiments, specs, e.Validators)
	if err != nil {
		log.CauseErrorf(builderrors.Internal, nil, err, "validating variants")
		return &Result{Log: log}, nil
	}

	combined, err := buildCombinedSpecialization(top, params.Experiments)
	if err != nil {
		log.CauseErrorf(builderrors.Reference, nil, err, "building combined specialization")
		return &Result{Log: log}, nil
	}
	if r := validateCombined(top, params.Experiments, combined, e.Validators); r != nil {
		results = append(results, r)
	}

	for _, r := range results {
		log.Messages = append(log.Messages, r.Messages...)
	}
	if builderrors.NewBuildFailed(log) != nil {
		return &Result{Log: log, Validations: results}, nil
	}

	named, err := e.assembleEntries(concrete, params.Experiments)
	if err != nil {
		log.CauseErrorf(builderrors.Internal, nil, err, "assembling archive")
		return &Result{Log: log, Validations: results}, nil
	}

	if parent != nil {
		for _, pe := range parent.Entries {
			if _, ok := named[pe.Name]; !ok {
				named[pe.Name] = pe.Bytes
			}
		}
	}

	meta := &manifest.BuildMetadata{
		CreatedAt:      createdAt,
		ParentID:       parentID,
		Report:         manifest.Summarize(log),
		SourceDir:      params.SourceDir,
		SheetGlobs:     params.SheetGlobs,
		ExcludeGlobs:   params.ExcludeGlobs,
		UnknownMembers: unknownMemberName(params.UnknownMembers),
		SchemaVersion:  params.SchemaVersion,
	}
	for _, pair := range params.Experiments {
		meta.Experiments = append(meta.Experiments, pair.String())
	}
	metaBytes, err := meta.Encode()
	if err != nil {
		log.CauseErrorf(builderrors.Internal, nil, err, "encoding _metadata")
		return &Result{Log: log, Validations: results}, nil
	}
	named[manifest.EntryName] = metaBytes

	return &Result{Archive: archive.Build(createdAt, named), Log: log, Validations: results}, nil
}
