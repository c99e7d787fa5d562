package build

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/gcbuild/internal/binder"
	"github.com/standardbeagle/gcbuild/internal/config"
	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/identity"
	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/sheet"
	"github.com/standardbeagle/gcbuild/internal/splitter"
	"github.com/standardbeagle/gcbuild/internal/store"
	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
)

// NoLibraryDefError reports a matched sheet file with no registered
// LibraryDef for its item type (the sheet's base filename).
type NoLibraryDefError struct{ ItemType string }

func (e *NoLibraryDefError) Error() string {
	return "no LibraryDef registered for item type \"" + e.ItemType + "\""
}

// BadVariantIDError reports a "/Variant" cell that does not parse as
// "experimentId/variantId".
type BadVariantIDError struct{ Raw string }

func (e *BadVariantIDError) Error() string {
	return "malformed variant id \"" + e.Raw + "\", want \"experiment/variant\""
}

func parseVariantPair(raw string) (expID, variantID string, err error) {
	idx := strings.IndexByte(raw, '/')
	if idx < 0 {
		return "", "", &BadVariantIDError{Raw: raw}
	}
	return raw[:idx], raw[idx+1:], nil
}

func locPtr(l location.SourceLocation) *location.SourceLocation { return &l }

func pairOf(expID, variantID string) identity.ExperimentVariantPair {
	return identity.ExperimentVariantPair{ExperimentID: expID, VariantID: variantID}
}

// discoverSheets lists every file under params.SourceDir that
// params.MatchesSheet includes, in deterministic sorted order — the
// iteration order spec.md §5 requires so a re-run over unchanged
// sources produces byte-identical archives.
func discoverSheets(params *config.BuildParameters) ([]string, error) {
	fsys := os.DirFS(params.SourceDir)
	var rel []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if params.MatchesSheet(filepath.ToSlash(path)) {
			rel = append(rel, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(rel)
	return rel, nil
}

// loadLibraries reads and binds every sheet matched by params into one
// LibraryDeduplicationStorage[any] per registered LibraryDef, logging
// every parse, split, or bind problem to log rather than aborting the
// whole pass on the first bad sheet.
func (e *Engine) loadLibraries(params *config.BuildParameters, log *builderrors.BuildLog) map[string]*store.LibraryDeduplicationStorage[any] {
	sheets, err := discoverSheets(params)
	if err != nil {
		log.Errorf(builderrors.IO, nil, "scanning %s: %v", params.SourceDir, err)
		return nil
	}

	concrete := make(map[string]*store.LibraryDeduplicationStorage[any], len(sheets))
	for _, rel := range sheets {
		itemType := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		def, ok := e.libraryDef(itemType)
		if !ok {
			log.Warnf(builderrors.Structural, nil, "%v", &NoLibraryDefError{ItemType: itemType})
			continue
		}

		raw, err := os.ReadFile(filepath.Join(params.SourceDir, rel))
		if err != nil {
			log.Errorf(builderrors.IO, nil, "reading %s: %v", rel, err)
			continue
		}

		src := location.SpreadsheetFile{Path: rel}
		s, err := sheet.FromCSV(src, bytes.NewReader(raw))
		if err != nil {
			log.Errorf(builderrors.IO, nil, "parsing %s: %v", rel, err)
			continue
		}
		if err := s.Validate(); err != nil {
			log.CauseErrorf(builderrors.Structural, nil, err, "%s", rel)
			continue
		}

		lib := store.NewLibraryDeduplicationStorage[any](itemType, def.ExtractRefs)
		e.loadSheet(lib, def, s, log)
		concrete[itemType] = lib
	}
	return concrete
}

func (e *Engine) loadSheet(lib *store.LibraryDeduplicationStorage[any], def LibraryDef, s *sheet.Sheet, log *builderrors.BuildLog) {
	if def.KeyValue {
		baseline, variants, err := splitter.SplitKeyValueItem(s)
		if err != nil {
			log.CauseErrorf(builderrors.Structural, nil, err, "%s: key-value split", def.ItemType)
			return
		}
		e.bindKeyValueItem(lib, def, baseline, variants, log)
		return
	}

	roots, err := splitter.SplitLibraryItems(s)
	if err != nil {
		log.CauseErrorf(builderrors.Structural, nil, err, "%s: split", def.ItemType)
		return
	}
	if err := syntaxtree.DetectDuplicateObjects(roots); err != nil {
		log.CauseErrorf(builderrors.Semantic, nil, err, "%s", def.ItemType)
		return
	}
	e.bindLibraryRoots(lib, def, roots, log)
}

func (e *Engine) bindLibraryRoots(lib *store.LibraryDeduplicationStorage[any], def LibraryDef, roots []*syntaxtree.RootObject, log *builderrors.BuildLog) {
	directVariants := make(map[string][]*syntaxtree.RootObject)
	var baselines []*syntaxtree.RootObject
	for _, r := range roots {
		if r.VariantID == "" {
			baselines = append(baselines, r)
		} else {
			directVariants[r.IDKey()] = append(directVariants[r.IDKey()], r)
		}
	}

	baselineKeys := make(map[string]bool, len(baselines))
	for _, r := range baselines {
		baselineKeys[r.IDKey()] = true
	}

	if err := checkAppendOrder(def.ItemType, roots); err != nil {
		log.CauseErrorf(builderrors.Semantic, locPtr(err.(*AppendOrderViolationError).Location), err, "%s", def.ItemType)
	}

	for _, baseRoot := range baselines {
		key := baseRoot.IDKey()
		for _, alias := range syntaxtree.ExtractAliases(baseRoot) {
			e.registerAlias(def.ItemType, alias, key)
		}

		baseline, colVariants := syntaxtree.ExtractVariants(baseRoot)
		value, ok := e.bind(def.TypeName, baseline.Node, log)
		if !ok {
			continue
		}
		if err := lib.LoadBaseline(key, value); err != nil {
			log.CauseErrorf(builderrors.Semantic, locPtr(baseRoot.Loc), err, "%s", def.ItemType)
			continue
		}

		variants := append(colVariants, directVariants[key]...)
		for _, v := range variants {
			e.bindVariantOverride(lib, def, baseline, v, key, log)
		}
	}

	for _, r := range roots {
		key := r.IDKey()
		if r.VariantID == "" || baselineKeys[key] {
			continue
		}
		e.bindAppendedVariant(lib, def, r, key, log)
	}
}

func (e *Engine) bindKeyValueItem(lib *store.LibraryDeduplicationStorage[any], def LibraryDef, baseline *syntaxtree.RootObject, variants []*syntaxtree.RootObject, log *builderrors.BuildLog) {
	if baseline == nil {
		log.Errorf(builderrors.Structural, nil, "%s: key-value sheet has no baseline Value row", def.ItemType)
		return
	}
	key := def.ItemType
	for _, alias := range syntaxtree.ExtractAliases(baseline) {
		e.registerAlias(def.ItemType, alias, key)
	}

	value, ok := e.bind(def.TypeName, baseline.Node, log)
	if !ok {
		return
	}
	if err := lib.LoadBaseline(key, value); err != nil {
		log.CauseErrorf(builderrors.Semantic, locPtr(baseline.Loc), err, "%s", def.ItemType)
		return
	}
	for _, v := range variants {
		e.bindVariantOverride(lib, def, baseline, v, key, log)
	}
}

func (e *Engine) bindVariantOverride(lib *store.LibraryDeduplicationStorage[any], def LibraryDef, baseline *syntaxtree.RootObject, variant *syntaxtree.RootObject, key string, log *builderrors.BuildLog) {
	expID, variantID, err := parseVariantPair(variant.VariantID)
	if err != nil {
		log.CauseErrorf(builderrors.Syntactic, locPtr(variant.Loc), err, "%s/%s", def.ItemType, key)
		return
	}
	merged := syntaxtree.InheritVariantValuesFromBaseline(baseline, variant)
	value, ok := e.bind(def.TypeName, merged.Node, log)
	if !ok {
		return
	}
	pair := pairOf(expID, variantID)
	if err := lib.ApplyReplace(pair, key, value); err != nil {
		log.CauseErrorf(builderrors.Patch, locPtr(variant.Loc), err, "%s/%s", def.ItemType, key)
	}
}

func (e *Engine) bindAppendedVariant(lib *store.LibraryDeduplicationStorage[any], def LibraryDef, variant *syntaxtree.RootObject, key string, log *builderrors.BuildLog) {
	expID, variantID, err := parseVariantPair(variant.VariantID)
	if err != nil {
		log.CauseErrorf(builderrors.Syntactic, locPtr(variant.Loc), err, "%s/%s", def.ItemType, key)
		return
	}
	value, ok := e.bind(def.TypeName, variant.Node, log)
	if !ok {
		return
	}
	lib.ApplyAppend(pairOf(expID, variantID), key, value)
}

func (e *Engine) bind(typeName string, obj *syntaxtree.Object, log *builderrors.BuildLog) (any, bool) {
	b := binder.New(e.Binder, log, e.Unknown)
	v, err := b.Bind(typeName, obj)
	if err != nil {
		log.CauseErrorf(builderrors.Semantic, locPtr(obj.Loc), err, "binding %s", typeName)
		return nil, false
	}
	return v, true
}
