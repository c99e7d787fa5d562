package patch

import (
	"bytes"
	"encoding/binary"
	"io"
)

// TruncatedEnvelopeError reports an envelope buffer that ends before a
// frame it promised was there finishes decoding.
type TruncatedEnvelopeError struct {
	Context string
}

func (e *TruncatedEnvelopeError) Error() string { return "patch: truncated envelope " + e.Context }

// EncodeEnvelope serializes e into the layout count:u32, then per entry
// name:lenString, data:lenString, in e.Names() order — the same
// length-prefixed framing internal/archive's codec uses for its own
// entry table, so an archive entry whose payload is itself an Envelope
// decodes with the identical reader shape.
func EncodeEnvelope(e *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint32(e.Len())); err != nil {
		return nil, err
	}
	for _, name := range e.Names() {
		data, _ := e.Get(name)
		writeLenString(&buf, name)
		writeLenBytes(&buf, data)
	}
	return buf.Bytes(), nil
}

// DecodeEnvelope parses data as written by EncodeEnvelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	r := bytes.NewReader(data)

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, &TruncatedEnvelopeError{Context: "count"}
	}

	e := NewEnvelope()
	for i := uint32(0); i < count; i++ {
		name, err := readLenString(r)
		if err != nil {
			return nil, &TruncatedEnvelopeError{Context: "entry.name"}
		}
		payload, err := readLenBytes(r)
		if err != nil {
			return nil, &TruncatedEnvelopeError{Context: "entry.data"}
		}
		e.Put(name, payload)
	}
	return e, nil
}

func writeLenString(w *bytes.Buffer, s string) {
	writeLenBytes(w, []byte(s))
}

func readLenString(r *bytes.Reader) (string, error) {
	b, err := readLenBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeLenBytes(w *bytes.Buffer, b []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	w.Write(lenBuf[:])
	w.Write(b)
}

func readLenBytes(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
