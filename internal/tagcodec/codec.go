package tagcodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// UnknownWireTypeError reports a byte on the wire that does not match
// any known WireType — either data corruption or a genuinely
// incompatible future format.
type UnknownWireTypeError struct {
	Tag byte
}

func (e *UnknownWireTypeError) Error() string {
	return fmt.Sprintf("tagcodec: unknown wire type tag %d", e.Tag)
}

// Encode serializes v into its tagged binary form.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes a Value previously produced by Encode.
func Decode(data []byte) (Value, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes v to w: a one-byte WireType tag followed by the
// type-specific payload, so a reader can always tell what comes next
// without external schema knowledge (spec.md §6).
func Write(w io.Writer, v Value) error {
	if _, err := w.Write([]byte{byte(v.WireType())}); err != nil {
		return err
	}
	switch val := v.(type) {
	case IntValue:
		return binary.Write(w, binary.LittleEndian, int32(val))
	case LongValue:
		return binary.Write(w, binary.LittleEndian, int64(val))
	case StringValue:
		return writeBytes(w, []byte(val))
	case BytesValue:
		return writeBytes(w, val)
	case ListValue:
		if err := writeUvarint(w, uint64(len(val))); err != nil {
			return err
		}
		for _, elem := range val {
			if err := Write(w, elem); err != nil {
				return err
			}
		}
		return nil
	case MapValue:
		if err := writeUvarint(w, uint64(len(val))); err != nil {
			return err
		}
		for _, entry := range val {
			if err := Write(w, entry.Key); err != nil {
				return err
			}
			if err := Write(w, entry.Value); err != nil {
				return err
			}
		}
		return nil
	case StructValue:
		if err := binary.Write(w, binary.LittleEndian, val.Version); err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(len(val.Members))); err != nil {
			return err
		}
		for _, m := range val.Members {
			if err := writeUvarint(w, uint64(m.TagID)); err != nil {
				return err
			}
			if err := Write(w, m.Value); err != nil {
				return err
			}
		}
		return nil
	case EnumValue:
		if err := binary.Write(w, binary.LittleEndian, val.Ordinal); err != nil {
			return err
		}
		return writeBytes(w, []byte(val.Name))
	default:
		return fmt.Errorf("tagcodec: unsupported Value type %T", v)
	}
}

// Read decodes one Value from r.
func Read(r io.Reader) (Value, error) {
	var tagByte [1]byte
	if _, err := io.ReadFull(r, tagByte[:]); err != nil {
		return nil, err
	}
	switch WireType(tagByte[0]) {
	case WireInt:
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return IntValue(v), nil
	case WireLong:
		var v int64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		return LongValue(v), nil
	case WireString:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return StringValue(b), nil
	case WireBytes:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return BytesValue(b), nil
	case WireList:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		out := make(ListValue, n)
		for i := range out {
			v, err := Read(r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case WireMap:
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		out := make(MapValue, n)
		for i := range out {
			k, err := Read(r)
			if err != nil {
				return nil, err
			}
			v, err := Read(r)
			if err != nil {
				return nil, err
			}
			out[i] = MapEntry{Key: k, Value: v}
		}
		return out, nil
	case WireStruct:
		var version uint32
		if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
			return nil, err
		}
		n, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		members := make([]StructMember, n)
		for i := range members {
			tagID, err := readUvarint(r)
			if err != nil {
				return nil, err
			}
			v, err := Read(r)
			if err != nil {
				return nil, err
			}
			members[i] = StructMember{TagID: uint32(tagID), Value: v}
		}
		return StructValue{Version: version, Members: members}, nil
	case WireEnum:
		var ordinal int32
		if err := binary.Read(r, binary.LittleEndian, &ordinal); err != nil {
			return nil, err
		}
		name, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return EnumValue{Ordinal: ordinal, Name: string(name)}, nil
	default:
		return nil, &UnknownWireTypeError{Tag: tagByte[0]}
	}
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUvarint(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeUvarint writes n as a standard LEB128 unsigned varint, matching
// encoding/binary.PutUvarint's format without requiring a scratch
// buffer sized for the caller's own use.
func writeUvarint(w io.Writer, n uint64) error {
	var buf [binary.MaxVarintLen64]byte
	size := binary.PutUvarint(buf[:], n)
	_, err := w.Write(buf[:size])
	return err
}

type byteReader struct {
	r io.Reader
}

func (br byteReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(br.r, b[:])
	return b[0], err
}

func readUvarint(r io.Reader) (uint64, error) {
	if br, ok := r.(io.ByteReader); ok {
		return binary.ReadUvarint(br)
	}
	return binary.ReadUvarint(byteReader{r})
}
