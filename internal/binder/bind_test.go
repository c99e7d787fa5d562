package binder

import (
	"testing"

	buildlog "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/location"
	"github.com/standardbeagle/gcbuild/internal/nodeid"
	"github.com/standardbeagle/gcbuild/internal/syntaxtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weapon struct {
	Name   string
	Damage int64
	Tags   []string
}

type armor struct {
	Name string
}

func scalar(v string) *syntaxtree.Scalar { return &syntaxtree.Scalar{Value: v} }

func weaponRegistry() *Registry {
	reg := NewRegistry()
	reg.Register("Weapon", &TypeBinding{
		New: func() any { return &weapon{} },
		Fields: map[string]FieldSetter{
			"Name":   StringField(func(t any, v string) { t.(*weapon).Name = v }),
			"Damage": IntField(func(t any, v int64) { t.(*weapon).Damage = v }),
			"Tags": ListField(ScalarElem(func(raw string) (string, error) { return raw, nil }),
				func(t any, v []string) { t.(*weapon).Tags = v }),
		},
	})
	return reg
}

func TestBind_ScalarAndListFields(t *testing.T) {
	obj := syntaxtree.NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Name"}, scalar("Sword"))
	obj.Set(nodeid.MemberId{Name: "Damage"}, scalar("12"))
	obj.Set(nodeid.MemberId{Name: "Tags"}, &syntaxtree.Collection{
		Elements: []syntaxtree.Node{scalar("sharp"), scalar("legendary")},
	})

	var log buildlog.BuildLog
	b := New(weaponRegistry(), &log, Error)
	v, err := b.Bind("Weapon", obj)
	require.NoError(t, err)
	require.False(t, log.HasErrors())

	w := v.(*weapon)
	assert.Equal(t, "Sword", w.Name)
	assert.Equal(t, int64(12), w.Damage)
	assert.Equal(t, []string{"sharp", "legendary"}, w.Tags)
}

func TestBind_UnknownMember_ErrorPolicy(t *testing.T) {
	obj := syntaxtree.NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Name"}, scalar("Sword"))
	obj.Set(nodeid.MemberId{Name: "Weight"}, scalar("3.5"))

	var log buildlog.BuildLog
	b := New(weaponRegistry(), &log, Error)
	_, err := b.Bind("Weapon", obj)
	require.NoError(t, err)
	assert.True(t, log.HasErrors())
}

func TestBind_UnknownMember_IgnorePolicy(t *testing.T) {
	obj := syntaxtree.NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Name"}, scalar("Sword"))
	obj.Set(nodeid.MemberId{Name: "Weight"}, scalar("3.5"))

	var log buildlog.BuildLog
	b := New(weaponRegistry(), &log, Ignore)
	v, err := b.Bind("Weapon", obj)
	require.NoError(t, err)
	assert.False(t, log.HasErrors())
	assert.Equal(t, "Sword", v.(*weapon).Name)
}

func TestBind_BadScalarRecordsLogErrorNotGoError(t *testing.T) {
	obj := syntaxtree.NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Damage"}, scalar("not-a-number"))

	var log buildlog.BuildLog
	b := New(weaponRegistry(), &log, Error)
	_, err := b.Bind("Weapon", obj)
	require.NoError(t, err)
	require.True(t, log.HasErrors())
	assert.Contains(t, log.Errors()[0].Error(), "Damage")
}

func TestBind_UnknownType(t *testing.T) {
	obj := syntaxtree.NewObject(location.SourceLocation{})
	var log buildlog.BuildLog
	b := New(weaponRegistry(), &log, Error)
	_, err := b.Bind("NotRegistered", obj)
	require.Error(t, err)
	assert.IsType(t, &UnknownTypeError{}, err)
}

func TestBind_IgnoresNonBaselineMembers(t *testing.T) {
	obj := syntaxtree.NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Name"}, scalar("Sword"))
	obj.Set(nodeid.MemberId{Name: "Name", VariantID: "hard"}, scalar("Sharper Sword"))

	var log buildlog.BuildLog
	b := New(weaponRegistry(), &log, Error)
	v, err := b.Bind("Weapon", obj)
	require.NoError(t, err)
	assert.False(t, log.HasErrors())
	assert.Equal(t, "Sword", v.(*weapon).Name)
}

func TestBind_NestedObjectField(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Armor", &TypeBinding{
		New: func() any { return &armor{} },
		Fields: map[string]FieldSetter{
			"Name": StringField(func(t any, v string) { t.(*armor).Name = v }),
		},
	})
	type loadout struct{ Armor *armor }
	reg.Register("Loadout", &TypeBinding{
		New: func() any { return &loadout{} },
		Fields: map[string]FieldSetter{
			"Armor": ObjectField("Armor", func(t any, v any) { t.(*loadout).Armor = v.(*armor) }),
		},
	})

	inner := syntaxtree.NewObject(location.SourceLocation{})
	inner.Set(nodeid.MemberId{Name: "Name"}, scalar("Plate"))
	outer := syntaxtree.NewObject(location.SourceLocation{})
	outer.Set(nodeid.MemberId{Name: "Armor"}, inner)

	var log buildlog.BuildLog
	b := New(reg, &log, Error)
	v, err := b.Bind("Loadout", outer)
	require.NoError(t, err)
	require.False(t, log.HasErrors())
	assert.Equal(t, "Plate", v.(*loadout).Armor.Name)
}

func TestBind_DerivedTypeDiscriminator(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Item", &TypeBinding{DerivedBy: "Kind"})
	reg.Register("Weapon", &TypeBinding{
		New: func() any { return &weapon{} },
		Fields: map[string]FieldSetter{
			"Name": StringField(func(t any, v string) { t.(*weapon).Name = v }),
		},
	})

	obj := syntaxtree.NewObject(location.SourceLocation{})
	obj.Set(nodeid.MemberId{Name: "Kind"}, scalar("Weapon"))
	obj.Set(nodeid.MemberId{Name: "Name"}, scalar("Axe"))

	var log buildlog.BuildLog
	b := New(reg, &log, Error)
	v, err := b.Bind("Item", obj)
	require.NoError(t, err)
	require.False(t, log.HasErrors())
	assert.Equal(t, "Axe", v.(*weapon).Name)
}
