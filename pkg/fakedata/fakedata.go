// Package fakedata generates plausible example values by kind name. It is
// never invoked by the executor or load-test engine, and no TUI form calls
// it either; only its own tests exercise it. Grounded on the
// generator-type-to-function map in
// Lincyaw-OpenERP/tools/loadgen/internal/generator/faker.go, scoped down to
// six kinds.
package fakedata

import (
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
)

// Kind names one of the generators Generate supports.
type Kind string

const (
	KindUUID  Kind = "uuid"
	KindEmail Kind = "email"
	KindName  Kind = "name"
	KindWord  Kind = "word"
	KindInt   Kind = "int"
	KindDate  Kind = "date"
)

var generators = map[Kind]func(*gofakeit.Faker) string{
	KindUUID:  func(f *gofakeit.Faker) string { return f.UUID() },
	KindEmail: func(f *gofakeit.Faker) string { return f.Email() },
	KindName:  func(f *gofakeit.Faker) string { return f.Name() },
	KindWord:  func(f *gofakeit.Faker) string { return f.Word() },
	KindInt:   func(f *gofakeit.Faker) string { return strconv.Itoa(f.Number(1, 100000)) },
	KindDate:  func(f *gofakeit.Faker) string { return f.Date().Format("2006-01-02") },
}

// Generator wraps a gofakeit.Faker for repeated Generate calls, avoiding a
// fresh random seed per call.
type Generator struct {
	faker *gofakeit.Faker
}

// New returns a Generator seeded from the system's entropy source.
func New() *Generator {
	return &Generator{faker: gofakeit.New(0)}
}

// Generate produces a fake value of the named kind.
func (g *Generator) Generate(kind Kind) (string, error) {
	fn, ok := generators[kind]
	if !ok {
		return "", fmt.Errorf("unknown fake data kind: %q", kind)
	}
	return fn(g.faker), nil
}

// SupportedKinds lists every kind Generate accepts, for populating a form's
// picker.
func SupportedKinds() []Kind {
	return []Kind{KindUUID, KindEmail, KindName, KindWord, KindInt, KindDate}
}
