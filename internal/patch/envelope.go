package patch

// Envelope is the ordered entryName → serialized-patch-bytes container
// a patch archive entry unpacks into (spec.md §4.6): each value is the
// tagged binary serialization (internal/tagcodec) of one entry's patch,
// kept as opaque bytes here so the caller can deserialize entries
// lazily during import instead of eagerly decoding the whole envelope.
type Envelope struct {
	order   []string
	entries map[string][]byte
}

// NewEnvelope returns an empty Envelope.
func NewEnvelope() *Envelope {
	return &Envelope{entries: make(map[string][]byte)}
}

// Put assigns entryName's serialized patch bytes, appending entryName
// to iteration order the first time it is set.
func (e *Envelope) Put(entryName string, data []byte) {
	if _, exists := e.entries[entryName]; !exists {
		e.order = append(e.order, entryName)
	}
	e.entries[entryName] = data
}

// Get returns entryName's serialized patch bytes, if present.
func (e *Envelope) Get(entryName string) ([]byte, bool) {
	b, ok := e.entries[entryName]
	return b, ok
}

// Names returns entry names in the order they were Put.
func (e *Envelope) Names() []string {
	return e.order
}

// Len returns the number of entries in the envelope.
func (e *Envelope) Len() int {
	return len(e.order)
}
