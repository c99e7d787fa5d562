// Package idcodec packs compact identifiers into wire-friendly forms
// (no other package in this module imports it): a patch index plus its
// directly-patched flag into a uint32, a library/item ordinal pair into
// a base-63 string, and a bare ConfigPatchIndex into a base-63 string.
// The base-63 alphabet itself (A-Z, a-z, 0-9, _) is re-exported from
// internal/encoding, which owns the actual digit algorithm.
package idcodec

import (
	"github.com/standardbeagle/gcbuild/internal/encoding"
	"github.com/standardbeagle/gcbuild/internal/identity"
)

// Base and Alphabet re-export encoding's base-63 constants for callers
// that only import idcodec.
const (
	Base     = encoding.Base63
	Alphabet = encoding.Alphabet63
)

// Re-exported so callers can errors.Is against them without importing
// internal/encoding directly.
var (
	ErrEmptyString = encoding.ErrEmptyString
	ErrInvalidChar = encoding.ErrInvalidChar
	ErrOverflow    = encoding.ErrOverflow
)

// Encode encodes a uint64 value to a base-63 string. Returns "A" for
// zero (minimum non-empty encoding).
func Encode(value uint64) string {
	return encoding.Base63Encode(value)
}

// EncodeNoZero encodes value to base-63, returning the empty string for
// zero rather than "A" — used where an empty cell in a composite key
// means "no patch index" instead of "index zero".
func EncodeNoZero(value uint64) string {
	return encoding.Base63EncodeNoZero(value)
}

// Decode decodes a base-63 string back to a uint64.
func Decode(encoded string) (uint64, error) {
	return encoding.Base63Decode(encoded)
}

// IsValid reports whether encoded is a well-formed base-63 string.
func IsValid(encoded string) bool {
	return encoding.Base63IsValid(encoded)
}

// PackPatchRef packs a ConfigPatchIndex and its directly-patched flag
// into a single uint32 (index in the upper 31 bits, flag in bit 0),
// mirroring the teacher's FileID+LocalSymbolID composite packing but
// sized for a flag bit instead of a second 32-bit field.
func PackPatchRef(idx identity.ConfigPatchIndex, directlyPatched bool) uint32 {
	v := uint32(idx) << 1
	if directlyPatched {
		v |= 1
	}
	return v
}

// UnpackPatchRef reverses PackPatchRef.
func UnpackPatchRef(packed uint32) (idx identity.ConfigPatchIndex, directlyPatched bool) {
	return identity.ConfigPatchIndex(packed >> 1), packed&1 != 0
}

// EncodeItemOrdinal encodes a (libraryOrdinal, itemOrdinal) pair into
// a single base-63 string. Grounded on
// the teacher's EncodeComposite/DecodeComposite (FileID+LocalSymbolID).
func EncodeItemOrdinal(libraryOrdinal, itemOrdinal uint32) string {
	return EncodeNoZero(encoding.PackUint32Pair(libraryOrdinal, itemOrdinal))
}

// DecodeItemOrdinal reverses EncodeItemOrdinal.
func DecodeItemOrdinal(encoded string) (libraryOrdinal, itemOrdinal uint32, err error) {
	if encoded == "" {
		return 0, 0, ErrEmptyString
	}
	combined, err := Decode(encoded)
	if err != nil {
		return 0, 0, err
	}
	libraryOrdinal, itemOrdinal = encoding.UnpackUint32Pair(combined)
	return libraryOrdinal, itemOrdinal, nil
}

// EncodeConfigPatchIndex encodes a ConfigPatchIndex to a base-63 string,
// the way the teacher encodes a raw SymbolID index.
func EncodeConfigPatchIndex(idx identity.ConfigPatchIndex) string {
	return Encode(uint64(idx))
}

// DecodeConfigPatchIndex reverses EncodeConfigPatchIndex.
func DecodeConfigPatchIndex(encoded string) (identity.ConfigPatchIndex, error) {
	v, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	return identity.ConfigPatchIndex(v), nil
}
