package archive

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Compression identifies how one entry's payload was stored on the
// wire (spec.md §4.7).
type Compression uint8

const (
	CompressionNone    Compression = 0
	CompressionDeflate Compression = 1
)

// TruncatedError reports an archive buffer that ends before a header
// or entry frame it promised was there finishes decoding.
type TruncatedError struct {
	Context string
}

func (e *TruncatedError) Error() string { return "archive: truncated " + e.Context }

// UnknownCompressionError reports an entry frame whose compression byte
// is neither CompressionNone nor CompressionDeflate.
type UnknownCompressionError struct {
	Value Compression
}

func (e *UnknownCompressionError) Error() string {
	return fmt.Sprintf("archive: unknown compression code %d", e.Value)
}

// Encode serializes a into the binary layout of spec.md §4.7:
//
//	Header := schemaVersion:u32, archiveVersion:hash128, createdAt:i64 (epoch micros), numEntries:u32
//	Entry   := name:lenString, entryHash:hash128, compression:u8, length:u32, payload:bytes
//
// An entry is deflate-compressed only when its raw length is at least
// minCompressSize; entries are written in a.Entries' existing order
// (already ascending by name, per Build).
func Encode(a *Archive, schemaVersion uint32, minCompressSize int) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, schemaVersion); err != nil {
		return nil, err
	}
	buf.Write(a.Version[:])
	if err := binary.Write(&buf, binary.LittleEndian, a.CreatedAt.UnixMicro()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(a.Entries))); err != nil {
		return nil, err
	}

	for _, e := range a.Entries {
		writeLenString(&buf, e.Name)
		buf.Write(e.Hash[:])

		payload := e.Bytes
		compression := CompressionNone
		if minCompressSize >= 0 && len(e.Bytes) >= minCompressSize {
			compressed, err := deflate(e.Bytes)
			if err != nil {
				return nil, err
			}
			payload = compressed
			compression = CompressionDeflate
		}

		buf.WriteByte(byte(compression))
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(payload))); err != nil {
			return nil, err
		}
		buf.Write(payload)
	}

	return buf.Bytes(), nil
}

// Decode parses data as written by Encode. For schemaVersion < 4, the
// archive's Version is recomputed from the decoded entry list rather
// than trusting the header's stored value, recovering older artifacts
// per spec.md §4.7.
func Decode(data []byte) (*Archive, error) {
	r := bytes.NewReader(data)

	var schemaVersion uint32
	if err := binary.Read(r, binary.LittleEndian, &schemaVersion); err != nil {
		return nil, &TruncatedError{Context: "header.schemaVersion"}
	}

	var version Hash128
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return nil, &TruncatedError{Context: "header.archiveVersion"}
	}

	var createdAtMicros int64
	if err := binary.Read(r, binary.LittleEndian, &createdAtMicros); err != nil {
		return nil, &TruncatedError{Context: "header.createdAt"}
	}

	var numEntries uint32
	if err := binary.Read(r, binary.LittleEndian, &numEntries); err != nil {
		return nil, &TruncatedError{Context: "header.numEntries"}
	}

	entries := make([]Entry, numEntries)
	for i := range entries {
		name, err := readLenString(r)
		if err != nil {
			return nil, &TruncatedError{Context: "entry.name"}
		}

		var hash Hash128
		if _, err := io.ReadFull(r, hash[:]); err != nil {
			return nil, &TruncatedError{Context: "entry.hash"}
		}

		compByte, err := r.ReadByte()
		if err != nil {
			return nil, &TruncatedError{Context: "entry.compression"}
		}
		compression := Compression(compByte)

		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, &TruncatedError{Context: "entry.length"}
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, &TruncatedError{Context: "entry.payload"}
		}

		var raw []byte
		switch compression {
		case CompressionNone:
			raw = payload
		case CompressionDeflate:
			raw, err = inflate(payload)
			if err != nil {
				return nil, err
			}
		default:
			return nil, &UnknownCompressionError{Value: compression}
		}

		entries[i] = Entry{Name: name, Hash: hash, Bytes: raw}
	}

	if schemaVersion < 4 {
		version = archiveVersion(entries)
	}

	return &Archive{
		Version:   version,
		CreatedAt: time.UnixMicro(createdAtMicros).UTC(),
		Entries:   entries,
	}, nil
}

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	return io.ReadAll(r)
}

func writeLenString(w *bytes.Buffer, s string) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	w.Write(lenBuf[:])
	w.WriteString(s)
}

func readLenString(r *bytes.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
