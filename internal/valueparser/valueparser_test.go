package valueparser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"yes", true, false},
		{"false", false, false},
		{"0", false, false},
		{"", false, false},
		{"nope", false, true},
	}
	for _, tc := range tests {
		got, err := ParseBool(tc.raw)
		if tc.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("90")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d2, err := ParseDuration("1h30m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d2)

	_, err = ParseDuration("banana")
	assert.Error(t, err)
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("Weapon:Sword01")
	require.NoError(t, err)
	assert.Equal(t, "Weapon", r.ItemType)
	assert.Equal(t, "Sword01", r.Key)

	r2, err := ParseRef("Sword01")
	require.NoError(t, err)
	assert.Equal(t, "", r2.ItemType)
	assert.Equal(t, "Sword01", r2.Key)

	_, err = ParseRef("")
	assert.Error(t, err)
}

func TestParseElementsBracketed(t *testing.T) {
	els, err := ParseElements("[a, b, c]")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, els)
}

func TestParseElementsBare(t *testing.T) {
	els, err := ParseElements("a, b, c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, els)
}

func TestParseElementsEmpty(t *testing.T) {
	els, err := ParseElements("")
	require.NoError(t, err)
	assert.Nil(t, els)

	els2, err := ParseElements("[]")
	require.NoError(t, err)
	assert.Equal(t, []string{}, els2)
}

func TestParseElementsNestedBrackets(t *testing.T) {
	els, err := ParseElements("[[1,2], [3,4]]")
	require.NoError(t, err)
	assert.Equal(t, []string{"[1,2]", "[3,4]"}, els)
}

func TestParseElementsUnterminated(t *testing.T) {
	_, err := ParseElements("[a, b")
	assert.Error(t, err)
}

func TestParseEnum(t *testing.T) {
	v, err := ParseEnum("Rare", []string{"Common", "Rare", "Epic"})
	require.NoError(t, err)
	assert.Equal(t, "Rare", v)

	_, err = ParseEnum("Legendary", []string{"Common", "Rare", "Epic"})
	assert.Error(t, err)
}
