package store

import "github.com/standardbeagle/gcbuild/internal/identity"

// TopLevelDeduplicationStorage holds the baseline reference graph
// across every library (spec.md §3): the starting point both for
// cross-library reference validation and for each specialization's
// reverse-reference closure (spec.md §4.9).
type TopLevelDeduplicationStorage struct {
	libraries                 map[string]LibraryHandle
	baselineReferences        map[identity.ConfigItemId][]identity.ConfigItemId
	baselineReverseReferences map[identity.ConfigItemId][]identity.ConfigItemId
}

// NewTopLevelDeduplicationStorage builds the baseline reference graph
// from every registered library's baseline items. Call once, after
// every library's baseline has finished loading (spec.md §3
// Lifecycles: baseline items are immutable once PostLoad has run).
func NewTopLevelDeduplicationStorage(libraries []LibraryHandle) *TopLevelDeduplicationStorage {
	t := &TopLevelDeduplicationStorage{
		libraries:                 make(map[string]LibraryHandle, len(libraries)),
		baselineReferences:        make(map[identity.ConfigItemId][]identity.ConfigItemId),
		baselineReverseReferences: make(map[identity.ConfigItemId][]identity.ConfigItemId),
	}
	for _, lib := range libraries {
		t.libraries[lib.ItemType()] = lib
	}
	for _, lib := range libraries {
		for _, key := range lib.Keys() {
			refs, ok := lib.References(key)
			if !ok {
				continue
			}
			id := identity.ConfigItemId{ItemType: lib.ItemType(), Key: key}
			t.baselineReferences[id] = refs
			for _, target := range refs {
				t.baselineReverseReferences[target] = append(t.baselineReverseReferences[target], id)
			}
		}
	}
	return t
}

// References returns id's baseline reference set.
func (t *TopLevelDeduplicationStorage) References(id identity.ConfigItemId) []identity.ConfigItemId {
	return t.baselineReferences[id]
}

// ReverseReferences returns the baseline items referencing id.
func (t *TopLevelDeduplicationStorage) ReverseReferences(id identity.ConfigItemId) []identity.ConfigItemId {
	return t.baselineReverseReferences[id]
}

// Library returns the registered LibraryHandle for itemType, if any.
func (t *TopLevelDeduplicationStorage) Library(itemType string) (LibraryHandle, bool) {
	h, ok := t.libraries[itemType]
	return h, ok
}

// Libraries returns every registered library, keyed by item type.
func (t *TopLevelDeduplicationStorage) Libraries() map[string]LibraryHandle {
	return t.libraries
}
