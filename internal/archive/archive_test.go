package archive

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash([]byte("hello"))
	b := ContentHash([]byte("hello"))
	c := ContentHash([]byte("world"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBuildSortsEntriesByName(t *testing.T) {
	a := Build(time.Now(), map[string][]byte{
		"Zebra.mpc": []byte("z"),
		"Apple.mpc": []byte("a"),
		"Mango.mpc": []byte("m"),
	})
	require.Len(t, a.Entries, 3)
	assert.Equal(t, "Apple.mpc", a.Entries[0].Name)
	assert.Equal(t, "Mango.mpc", a.Entries[1].Name)
	assert.Equal(t, "Zebra.mpc", a.Entries[2].Name)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	createdAt := time.UnixMicro(1_700_000_000_000_000).UTC()
	a := Build(createdAt, map[string][]byte{
		"Fruits.mpc": []byte(`{"a":"Apple","b":"Banana"}`),
		"Server.mpc": []byte(strings.Repeat("x", 1024)), // long enough to get compressed
	})

	encoded, err := Encode(a, 4, 256)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, a.Version, decoded.Version)
	assert.Equal(t, createdAt, decoded.CreatedAt)
	require.Len(t, decoded.Entries, 2)
	for i, e := range a.Entries {
		assert.Equal(t, e.Name, decoded.Entries[i].Name)
		assert.Equal(t, e.Hash, decoded.Entries[i].Hash)
		assert.Equal(t, e.Bytes, decoded.Entries[i].Bytes)
	}
}

func TestEncodeIdempotent(t *testing.T) {
	a := Build(time.UnixMicro(42).UTC(), map[string][]byte{"Only.mpc": []byte("payload")})
	first, err := Encode(a, 4, 256)
	require.NoError(t, err)
	second, err := Encode(a, 4, 256)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestContentHashMatchesEntryHash(t *testing.T) {
	a := Build(time.Now(), map[string][]byte{"E.mpc": []byte("some bytes")})
	for _, e := range a.Entries {
		assert.Equal(t, ContentHash(e.Bytes), e.Hash)
	}
}

func TestContainsAndBytes(t *testing.T) {
	a := Build(time.Now(), map[string][]byte{"Fruits.mpc": []byte("data")})
	assert.True(t, a.Contains("Fruits.mpc"))
	assert.False(t, a.Contains("Missing.mpc"))

	b, ok := a.Bytes("Fruits.mpc")
	require.True(t, ok)
	assert.Equal(t, []byte("data"), b)
}

func TestSchemaVersionLessThan4RecomputesVersionOnRead(t *testing.T) {
	a := Build(time.UnixMicro(7).UTC(), map[string][]byte{"A.mpc": []byte("aaa"), "B.mpc": []byte("bbb")})
	encoded, err := Encode(a, 3, 256)
	require.NoError(t, err)

	// Corrupt the stored archiveVersion field in the header (bytes 4..20)
	// to prove Decode recomputes it rather than trusting it, for
	// schemaVersion < 4 artifacts (spec.md §4.7).
	corrupted := append([]byte(nil), encoded...)
	for i := 4; i < 20; i++ {
		corrupted[i] ^= 0xFF
	}

	decoded, err := Decode(corrupted)
	require.NoError(t, err)
	assert.Equal(t, a.Version, decoded.Version)
}

func TestUncompressedBelowThreshold(t *testing.T) {
	a := Build(time.Now(), map[string][]byte{"Small.mpc": []byte("tiny")})
	encoded, err := Encode(a, 4, 256)
	require.NoError(t, err)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("tiny"), decoded.Entries[0].Bytes)
}

func TestOpenReader(t *testing.T) {
	a := Build(time.Now(), map[string][]byte{"Fruits.mpc": []byte("stream me")})
	r, ok := a.OpenReader("Fruits.mpc")
	require.True(t, ok)
	buf := make([]byte, 9)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "stream me", string(buf[:n]))
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	require.Error(t, err)
}
