package fakedata

import (
	"testing"
)

func TestGenerateAllSupportedKinds(t *testing.T) {
	g := New()
	for _, kind := range SupportedKinds() {
		got, err := g.Generate(kind)
		if err != nil {
			t.Fatalf("kind %q: unexpected error: %v", kind, err)
		}
		if got == "" {
			t.Fatalf("kind %q: got empty value", kind)
		}
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	g := New()
	if _, err := g.Generate(Kind("not-a-kind")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestGenerateIntIsNumeric(t *testing.T) {
	g := New()
	got, err := g.Generate(KindInt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range got {
		if r < '0' || r > '9' {
			t.Fatalf("got non-digit rune %q in %q", r, got)
		}
	}
}

func TestGenerateDateFormat(t *testing.T) {
	g := New()
	got, err := g.Generate(KindDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len("2006-01-02") {
		t.Fatalf("got %q, want YYYY-MM-DD shaped string", got)
	}
}
