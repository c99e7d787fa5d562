package tagfields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Power int64
}

func widgetBinding() *TagBinding {
	return &TagBinding{
		New: func() any { return &widget{} },
		Fields: map[int]Field{
			1: {
				Get: func(s any) any { return s.(*widget).Power },
				Set: func(t any, v any) { t.(*widget).Power = v.(int64) },
			},
		},
		Names: map[string]int{"Power": 1},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Widget", widgetBinding())

	binding, ok := reg.Lookup("Widget")
	require.True(t, ok)

	w := binding.New().(*widget)
	binding.Fields[1].Set(w, int64(7))
	assert.Equal(t, int64(7), binding.Fields[1].Get(w))
	assert.Equal(t, 1, binding.Names["Power"])
}

func TestRegistry_LookupMissing(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("NotThere")
	assert.False(t, ok)
}
