package main

import (
	"github.com/standardbeagle/gcbuild/internal/binder"
	"github.com/standardbeagle/gcbuild/internal/build"
	"github.com/standardbeagle/gcbuild/internal/tagfields"
)

// ConfigEntry is the reference domain type this build wires up: a
// generic keyed config row with a display name and a numeric value.
// A real project registers its own set of domain structs in its place;
// this one exists so `gcbuild build` runs end to end over the two
// libraries spec.md §6's persisted layout names directly (Shared,
// Server) without requiring a calling project to embed the engine
// first.
type ConfigEntry struct {
	Id    string
	Name  string
	Value float64
}

func registerSchema(e *build.Engine) {
	e.Binder.Register("ConfigEntry", &binder.TypeBinding{
		New: func() any { return &ConfigEntry{} },
		Fields: map[string]binder.FieldSetter{
			"Id":    binder.StringField(func(t any, v string) { t.(*ConfigEntry).Id = v }),
			"Name":  binder.StringField(func(t any, v string) { t.(*ConfigEntry).Name = v }),
			"Value": binder.FloatField(func(t any, v float64) { t.(*ConfigEntry).Value = v }),
		},
	})

	e.Tags.Register("ConfigEntry", &tagfields.TagBinding{
		New: func() any { return &ConfigEntry{} },
		Fields: map[int]tagfields.Field{
			1: {
				Get:  func(s any) any { return s.(*ConfigEntry).Id },
				Set:  func(t any, v any) { t.(*ConfigEntry).Id = v.(string) },
				Kind: tagfields.KindString,
			},
			2: {
				Get:  func(s any) any { return s.(*ConfigEntry).Name },
				Set:  func(t any, v any) { t.(*ConfigEntry).Name = v.(string) },
				Kind: tagfields.KindString,
			},
			3: {
				Get:  func(s any) any { return s.(*ConfigEntry).Value },
				Set:  func(t any, v any) { t.(*ConfigEntry).Value = v.(float64) },
				Kind: tagfields.KindFloat64,
			},
		},
		Names: map[string]int{"Id": 1, "Name": 2, "Value": 3},
	})

	e.Register(build.LibraryDef{ItemType: "Shared", TypeName: "ConfigEntry"})
	e.Register(build.LibraryDef{ItemType: "Server", TypeName: "ConfigEntry"})
}
