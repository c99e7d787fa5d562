package archive

import "bytes"

// OpenReader returns a stream over name's raw payload, for callers that
// want to decode an entry incrementally (e.g. internal/tagcodec.Read)
// instead of holding the whole byte slice. The returned reader aliases
// the archive's own backing buffer, so it must not outlive a, per
// spec.md §4.7's "views may alias the backing buffer" note.
func (a *Archive) OpenReader(name string) (*bytes.Reader, bool) {
	b, ok := a.Bytes(name)
	if !ok {
		return nil, false
	}
	return bytes.NewReader(b), true
}
