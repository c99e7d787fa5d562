package archive

import (
	"sort"
	"time"
)

// Entry is one named byte blob within an Archive (spec.md §3): Bytes is
// always the raw, uncompressed logical payload — whether it was stored
// compressed on the wire is an encoding detail Decode already undoes.
type Entry struct {
	Name  string
	Hash  Hash128
	Bytes []byte
}

// Archive is the in-memory model of one decoded (or not-yet-encoded)
// archive: a content-addressed Version over its Entries, a creation
// timestamp, and the entries themselves in ascending name order
// (spec.md §3/§4.7).
type Archive struct {
	Version   Hash128
	CreatedAt time.Time
	Entries   []Entry
}

// Build assembles an Archive from an unordered set of (name, rawBytes)
// entries: each entry's hash is its ContentHash, entries are sorted
// into ascending name order (spec.md §4.7's "stable string comparator"
// is Go's native byte-wise string ordering), and Version is folded over
// that sorted list.
func Build(createdAt time.Time, named map[string][]byte) *Archive {
	entries := make([]Entry, 0, len(named))
	for name, raw := range named {
		entries = append(entries, Entry{Name: name, Hash: ContentHash(raw), Bytes: raw})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return &Archive{
		Version:   archiveVersion(entries),
		CreatedAt: createdAt,
		Entries:   entries,
	}
}

// Contains reports whether name is present in the archive.
func (a *Archive) Contains(name string) bool {
	_, ok := a.entry(name)
	return ok
}

// Bytes returns the raw, uncompressed payload for name.
func (a *Archive) Bytes(name string) ([]byte, bool) {
	e, ok := a.entry(name)
	if !ok {
		return nil, false
	}
	return e.Bytes, true
}

func (a *Archive) entry(name string) (Entry, bool) {
	// Entries are few enough per archive (one per config/patch/entry,
	// not per config item) that a linear scan beats building and
	// maintaining a name index the builder would otherwise need to
	// keep in sync with Entries' authoritative order.
	for _, e := range a.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
