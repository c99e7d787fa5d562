package build

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/gcbuild/internal/identity"
	"github.com/standardbeagle/gcbuild/internal/patch"
	"github.com/standardbeagle/gcbuild/internal/store"
	"github.com/standardbeagle/gcbuild/internal/tagcodec"
)

// assembleEntries renders one named byte-blob per spec.md §6's
// persisted state layout: "<ItemType>.mpa" baseline snapshots (a
// tagcodec map of key to encoded struct), "<ItemType>Patch.<exp>.
// <variant>.mpp" patch envelopes (one per experiment variant that
// directly patches at least one key in that library), and an optional
// "<ItemType>.AliasTable2.mpc" alias table. The "_metadata" entry is
// added by the caller (build.go), which holds the build log and
// parameters it reports on.
func (e *Engine) assembleEntries(concrete map[string]*store.LibraryDeduplicationStorage[any], experiments []identity.ExperimentVariantPair) (map[string][]byte, error) {
	named := make(map[string][]byte)

	itemTypes := make([]string, 0, len(concrete))
	for itemType := range concrete {
		itemTypes = append(itemTypes, itemType)
	}
	sort.Strings(itemTypes)

	for _, itemType := range itemTypes {
		lib := concrete[itemType]
		def, _ := e.libraryDef(itemType)

		baseline, err := e.encodeBaseline(def, lib)
		if err != nil {
			return nil, fmt.Errorf("build: encoding %s.mpa: %w", itemType, err)
		}
		named[itemType+".mpa"] = baseline

		if alias := e.encodeAliasTable(itemType); alias != nil {
			named[itemType+".AliasTable2.mpc"] = alias
		}

		for _, pair := range experiments {
			data, ok, err := e.encodePatchEnvelope(def, lib, pair)
			if err != nil {
				return nil, fmt.Errorf("build: encoding %s patch %s: %w", itemType, pair, err)
			}
			if !ok {
				continue
			}
			named[fmt.Sprintf("%sPatch.%s.%s.mpp", itemType, pair.ExperimentID, pair.VariantID)] = data
		}
	}

	return named, nil
}

func (e *Engine) encodeBaseline(def LibraryDef, lib *store.LibraryDeduplicationStorage[any]) ([]byte, error) {
	entries := make(tagcodec.MapValue, 0, len(lib.Order()))
	for _, key := range lib.Order() {
		entry, _ := lib.Entry(key)
		if entry.Baseline == nil {
			continue // patch-appended key: no baseline snapshot to emit
		}
		val, err := EncodeValue(e.Tags, def.TypeName, entry.Baseline.Item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, tagcodec.MapEntry{Key: tagcodec.StringValue(key), Value: val})
	}
	return tagcodec.Encode(entries)
}

func (e *Engine) encodePatchEnvelope(def LibraryDef, lib *store.LibraryDeduplicationStorage[any], pair identity.ExperimentVariantPair) ([]byte, bool, error) {
	idx, ok := lib.IndexOf(pair)
	if !ok {
		return nil, false, nil
	}

	env := patch.NewEnvelope()
	for _, key := range lib.Order() {
		entry, _ := lib.Entry(key)
		for _, o := range entry.Overrides {
			if o.PatchIndex != idx || !o.IsDirectlyPatched {
				continue
			}
			val, err := EncodeValue(e.Tags, def.TypeName, o.Data.Item)
			if err != nil {
				return nil, false, err
			}
			data, err := tagcodec.Encode(val)
			if err != nil {
				return nil, false, err
			}
			env.Put(key, data)
		}
	}
	if env.Len() == 0 {
		return nil, false, nil
	}

	data, err := patch.EncodeEnvelope(env)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (e *Engine) encodeAliasTable(itemType string) []byte {
	m, ok := e.aliases[itemType]
	if !ok || len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for a := range m {
		names = append(names, a)
	}
	sort.Strings(names)

	entries := make(tagcodec.MapValue, 0, len(names))
	for _, a := range names {
		entries = append(entries, tagcodec.MapEntry{Key: tagcodec.StringValue(a), Value: tagcodec.StringValue(m[a])})
	}
	data, err := tagcodec.Encode(entries)
	if err != nil {
		return nil // an alias table is a lookup convenience, not required for correctness
	}
	return data
}
