// Package archive implements the binary archive container (spec.md
// §4.7): a versioned, entry-addressed, per-entry-compressed blob
// format with a deterministic content hash over its ordered entries.
// Grounded on the teacher's xxhash-addressed content store
// (internal/core/file_content_store.go) for the hashing primitive, and
// on its own hand-rolled binary framing style (internal/idcodec) for
// the wire layout — no example repo in the pack implements an archive
// container, so the byte layout itself is written directly from
// spec.md §4.7's description.
package archive

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hashSalt domain-separates the second xxhash64 pass from the first,
// so ContentHash does not degenerate into the same 64 bits repeated
// twice. Fixed and arbitrary; only its stability across builds matters.
var hashSalt = [16]byte{
	0x47, 0x43, 0x42, 0x75, 0x69, 0x6c, 0x64, 0x31,
	0x98, 0x2f, 0x6a, 0x1d, 0xc3, 0x55, 0x0e, 0x7b,
}

// Hash128 is the engine's 128-bit content hash (spec.md §3/§4.7), used
// both as one entry's hash and, folded again over the sorted
// (name, entryHash) list, as the whole archive's version.
type Hash128 [16]byte

// ContentHash computes a deterministic 128-bit hash of raw, by running
// two independent, domain-separated xxhash64 passes over it and
// concatenating the results. SPEC_FULL.md's Open Question resolution:
// the example pack carries cespare/xxhash/v2 (64-bit XXH64) but no
// XXH3-128 implementation, so "fixed 128-bit hash" is satisfied by
// composing the pack's own dependency twice rather than introducing an
// ungrounded one.
func ContentHash(raw []byte) Hash128 {
	var out Hash128
	binary.LittleEndian.PutUint64(out[0:8], xxhash.Sum64(raw))

	salted := make([]byte, 0, len(hashSalt)+len(raw))
	salted = append(salted, hashSalt[:]...)
	salted = append(salted, raw...)
	binary.LittleEndian.PutUint64(out[8:16], xxhash.Sum64(salted))
	return out
}

// archiveVersion folds the sorted (name, entryHash) list of entries
// into one Hash128, the archive's content-addressed version (spec.md
// §4.7: "archiveVersion is derived as hash128(concat over sorted
// entries of (name, entryHash))"). entries must already be in ascending
// name order; callers (Build, and schemaVersion<4 recovery on read)
// are responsible for sorting first.
func archiveVersion(entries []Entry) Hash128 {
	var buf bytes.Buffer
	for _, e := range entries {
		writeLenString(&buf, e.Name)
		buf.Write(e.Hash[:])
	}
	return ContentHash(buf.Bytes())
}
