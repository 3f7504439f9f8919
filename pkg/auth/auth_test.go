package auth

import (
	"context"
	"testing"

	"github.com/restkit/restkit/pkg/collection"
)

func TestApplyBearer(t *testing.T) {
	cfg := &collection.AuthConfig{
		Kind:   collection.AuthBearer,
		Bearer: &collection.BearerAuth{Token: "{{tok}}"},
	}
	var headers collection.OrderedHeaders
	query := map[string]string{}

	if err := Apply(context.Background(), cfg, &headers, query, map[string]string{"tok": "abc123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := headers.Get("Authorization")
	if !ok || got != "Bearer abc123" {
		t.Fatalf("got (%q, %v), want Bearer abc123", got, ok)
	}
}

func TestApplyBasicEncodesCredentials(t *testing.T) {
	cfg := &collection.AuthConfig{
		Kind: collection.AuthBasic,
		Basic: &collection.BasicAuth{
			Username: "u",
			Password: "p",
		},
	}
	var headers collection.OrderedHeaders
	query := map[string]string{}

	if err := Apply(context.Background(), cfg, &headers, query, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := headers.Get("Authorization")
	want := "Basic dXA6cA=="
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestApplyApiKeyHeader(t *testing.T) {
	cfg := &collection.AuthConfig{
		Kind: collection.AuthApiKey,
		ApiKey: &collection.ApiKeyAuth{
			Name:     "X-Api-Key",
			Value:    "{{key}}",
			Location: collection.ApiKeyHeader,
		},
	}
	var headers collection.OrderedHeaders
	query := map[string]string{}

	if err := Apply(context.Background(), cfg, &headers, query, map[string]string{"key": "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := headers.Get("X-Api-Key")
	if !ok || got != "secret" {
		t.Fatalf("got (%q, %v), want secret", got, ok)
	}
}

func TestApplyApiKeyQueryParam(t *testing.T) {
	cfg := &collection.AuthConfig{
		Kind: collection.AuthApiKey,
		ApiKey: &collection.ApiKeyAuth{
			Name:     "key",
			Value:    "secret",
			Location: collection.ApiKeyQueryParam,
		},
	}
	var headers collection.OrderedHeaders
	query := map[string]string{}

	if err := Apply(context.Background(), cfg, &headers, query, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if query["key"] != "secret" {
		t.Fatalf("got %q, want secret", query["key"])
	}
}

func TestApplyDoesNotOverwriteExistingAuthorizationHeader(t *testing.T) {
	cfg := &collection.AuthConfig{
		Kind:   collection.AuthBearer,
		Bearer: &collection.BearerAuth{Token: "should-not-apply"},
	}
	var headers collection.OrderedHeaders
	headers.Set("Authorization", "preset-by-inputs")
	query := map[string]string{}

	if err := Apply(context.Background(), cfg, &headers, query, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := headers.Get("Authorization")
	if got != "preset-by-inputs" {
		t.Fatalf("got %q, want preset-by-inputs to survive", got)
	}
}

func TestApplyBearerMissingVariableFails(t *testing.T) {
	cfg := &collection.AuthConfig{
		Kind:   collection.AuthBearer,
		Bearer: &collection.BearerAuth{Token: "{{missing}}"},
	}
	var headers collection.OrderedHeaders
	query := map[string]string{}

	if err := Apply(context.Background(), cfg, &headers, query, nil); err == nil {
		t.Fatal("expected missing variable error")
	}
}

func TestApplyNilConfigIsNoop(t *testing.T) {
	var headers collection.OrderedHeaders
	query := map[string]string{}
	if err := Apply(context.Background(), nil, &headers, query, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(headers) != 0 || len(query) != 0 {
		t.Fatal("expected no mutation for nil config")
	}
}
