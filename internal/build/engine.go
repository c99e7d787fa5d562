// Package build orchestrates the full sheet-to-archive pipeline (spec.md
// §4.10): sheet discovery and parsing, per-entry binding, variant-aware
// patch extraction into the deduplicating store, per-variant
// specialization and validation, and final archive assembly. It is the
// "interface only; not the hard part" layer spec.md calls out — the
// genuinely hard algorithms (header-path parsing, item splitting,
// reference-driven duplication) already live in their own packages;
// this one just drives them in the right order.
package build

import (
	"github.com/standardbeagle/gcbuild/internal/binder"
	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/identity"
	"github.com/standardbeagle/gcbuild/internal/store"
	"github.com/standardbeagle/gcbuild/internal/tagfields"
	"github.com/standardbeagle/gcbuild/internal/valueparser"
)

// LibraryDef registers one sheet-backed library with an Engine: the
// item type its keys live under (matching the sheet's base filename,
// e.g. "Shared.csv" registers item type "Shared"), the type name its
// rows bind to in both the Engine's binder.Registry and
// tagfields.Registry, whether the sheet is a vertical key-value sheet
// rather than a horizontal library sheet, and how to compute a bound
// item's outgoing references for the deduplicating store (spec.md
// §4.9).
type LibraryDef struct {
	ItemType    string
	TypeName    string
	KeyValue    bool
	ExtractRefs store.ReferenceExtractor[any]
}

// Validator inspects one fully-built specialization and reports any
// problems it finds; registered validators run once per experiment
// variant (validate.go) and once more on the combined specialization
// (build.go).
type Validator func(top *store.TopLevelDeduplicationStorage, spec *store.Specialization) []*builderrors.BuildMessage

// Engine holds the type registries and library definitions a calling
// game project wires up once at startup. Everything downstream of
// registration is driven purely by a config.BuildParameters, per
// spec.md §9's redesign flag against a build-time singleton: distinct
// Engines may coexist, each with its own registries.
type Engine struct {
	Binder  *binder.Registry
	Tags    *tagfields.Registry
	Unknown binder.UnknownMemberPolicy

	Validators []Validator

	libraries map[string]LibraryDef
	aliases   map[string]map[string]string // itemType -> alias -> real key
}

// NewEngine returns an Engine with no registered libraries.
func NewEngine(b *binder.Registry, tags *tagfields.Registry, unknown binder.UnknownMemberPolicy) *Engine {
	return &Engine{
		Binder:    b,
		Tags:      tags,
		Unknown:   unknown,
		libraries: make(map[string]LibraryDef),
		aliases:   make(map[string]map[string]string),
	}
}

// Register adds or replaces def. A nil ExtractRefs is treated as "this
// type never references anything", so callers with no refs to extract
// don't need to supply a no-op closure.
func (e *Engine) Register(def LibraryDef) {
	if def.ExtractRefs == nil {
		def.ExtractRefs = func(any) []identity.ConfigItemId { return nil }
	}
	e.libraries[def.ItemType] = def
}

// RegisterValidator appends v to the Engine's per-variant validator set.
func (e *Engine) RegisterValidator(v Validator) {
	e.Validators = append(e.Validators, v)
}

func (e *Engine) libraryDef(itemType string) (LibraryDef, bool) {
	d, ok := e.libraries[itemType]
	return d, ok
}

// registerAlias records alias as another name for key under itemType,
// called while binding an item whose "/Aliases" cell named it.
func (e *Engine) registerAlias(itemType, alias, key string) {
	m, ok := e.aliases[itemType]
	if !ok {
		m = make(map[string]string)
		e.aliases[itemType] = m
	}
	m[alias] = key
}

// ResolveRef canonicalizes a parsed MetaRef cell to a ConfigItemId,
// defaulting its item type to defaultItemType when the cell carried a
// bare key, and resolving any alias to the item's real key. This is the
// canonicalization spec.md §4.9 requires of every ReferenceExtractor
// ("canonicalized to the basemost item type and alias-resolved") —
// registered LibraryDefs' ExtractRefs closures call back into this
// method instead of duplicating alias-table lookups themselves.
func (e *Engine) ResolveRef(r valueparser.Ref, defaultItemType string) identity.ConfigItemId {
	itemType := r.ItemType
	if itemType == "" {
		itemType = defaultItemType
	}
	key := r.Key
	if m, ok := e.aliases[itemType]; ok {
		if real, ok := m[key]; ok {
			key = real
		}
	}
	return identity.ConfigItemId{ItemType: itemType, Key: key}
}
