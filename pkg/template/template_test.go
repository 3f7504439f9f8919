package template

import (
	"errors"
	"testing"

	"github.com/restkit/restkit/pkg/apperr"
)

func TestFind(t *testing.T) {
	names, err := Find("{{a}} and {{ b }} and {{a}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "a"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestFindUnmatchedIsSyntaxError(t *testing.T) {
	_, err := Find("{{unterminated")
	var syntaxErr *apperr.InvalidSyntax
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected InvalidSyntax, got %v", err)
	}
}

func TestHasPlaceholders(t *testing.T) {
	if !HasPlaceholders("hello {{name}}") {
		t.Fatal("expected true")
	}
	if HasPlaceholders("hello {not a var}") {
		t.Fatal("expected false for single-brace literal")
	}
}

func TestSubstituteStrictMissingVariable(t *testing.T) {
	_, err := SubstituteStrict("{{missing}}", map[string]string{})
	var missing *apperr.MissingVariable
	if !errors.As(err, &missing) || missing.Name != "missing" {
		t.Fatalf("expected MissingVariable(missing), got %v", err)
	}
}

func TestSubstituteStrictSingleBraceLiteral(t *testing.T) {
	got, err := SubstituteStrict("{{var}} and {not a var} and {{another}}", map[string]string{
		"var":     "x",
		"another": "y",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "x and {not a var} and y"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSubstituteLenientMissingBecomesEmpty(t *testing.T) {
	got := SubstituteLenient("{{missing}} trailing", map[string]string{})
	if got != " trailing" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteLenientUnmatchedPreservedVerbatim(t *testing.T) {
	got := SubstituteLenient("prefix {{unterminated", map[string]string{})
	if got != "prefix {{unterminated" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteIdempotence(t *testing.T) {
	tmpl := "{{a}}-{{b}}"
	vars := map[string]string{"a": "x", "b": "y"}

	once, err := SubstituteStrict(tmpl, vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := SubstituteStrict(once, vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice {
		t.Fatalf("not idempotent: %q != %q", once, twice)
	}
}

func TestSubstituteTrimsWhitespaceInIdentifier(t *testing.T) {
	got, err := SubstituteStrict("{{  spaced  }}", map[string]string{"spaced": "ok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q, want ok", got)
	}
}
