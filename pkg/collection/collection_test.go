package collection

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewCollectionTimestamps(t *testing.T) {
	c := NewCollection("Demo")
	if c.CreatedAt.After(c.UpdatedAt) {
		t.Fatalf("created_at %v after updated_at %v", c.CreatedAt, c.UpdatedAt)
	}
	if c.ID == "" {
		t.Fatal("expected non-empty id")
	}
}

func TestAddRemoveEndpointRestoresSequence(t *testing.T) {
	c := NewCollection("Demo")
	e := NewEndpoint("List", MethodGet, "https://example.test/u")

	before := append([]Endpoint(nil), c.Endpoints...)
	priorUpdated := c.UpdatedAt

	c.AddEndpoint(e)
	if !c.HasEndpoint(e.ID) {
		t.Fatal("expected endpoint present after add")
	}

	ok := c.RemoveEndpoint(e.ID)
	if !ok {
		t.Fatal("expected remove to report found")
	}

	if len(c.Endpoints) != len(before) {
		t.Fatalf("expected endpoints restored to length %d, got %d", len(before), len(c.Endpoints))
	}
	if c.UpdatedAt.Before(priorUpdated) {
		t.Fatalf("updated_at went backwards: %v < %v", c.UpdatedAt, priorUpdated)
	}
}

func TestRemoveEndpointAbsentReportsFalse(t *testing.T) {
	c := NewCollection("Demo")
	if c.RemoveEndpoint("nonexistent") {
		t.Fatal("expected false for removing an absent id")
	}
}

func TestOrderedHeadersCaseInsensitiveSet(t *testing.T) {
	var h OrderedHeaders
	h.Set("Content-Type", "application/json")
	h.Set("content-type", "text/plain")

	if len(h) != 1 {
		t.Fatalf("expected one entry after case-insensitive overwrite, got %d", len(h))
	}
	v, ok := h.Get("CONTENT-TYPE")
	if !ok || v != "text/plain" {
		t.Fatalf("got (%q, %v), want (%q, true)", v, ok, "text/plain")
	}
}

func TestOrderedHeadersPreservesInsertionOrderThroughJSON(t *testing.T) {
	var h OrderedHeaders
	h.Set("Z-Header", "1")
	h.Set("A-Header", "2")
	h.Set("M-Header", "3")

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded OrderedHeaders
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(decoded) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(decoded))
	}
	wantOrder := []string{"Z-Header", "A-Header", "M-Header"}
	for i, key := range wantOrder {
		if decoded[i].Key != key {
			t.Fatalf("position %d: got key %q, want %q", i, decoded[i].Key, key)
		}
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	c := NewCollection("Demo")
	e := NewEndpoint("List", MethodGet, "https://example.test/u")
	c.AddEndpoint(e)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var reloaded Collection
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if reloaded.Name != c.Name || len(reloaded.Endpoints) != 1 {
		t.Fatalf("round trip mismatch: %+v", reloaded)
	}
	if reloaded.Endpoints[0].Method != MethodGet {
		t.Fatalf("expected GET endpoint, got %v", reloaded.Endpoints[0].Method)
	}
}

func TestEndpointWithNoHeadersRoundTripsToEmptyNotNil(t *testing.T) {
	e := NewEndpoint("List", MethodGet, "https://example.test/u")

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var reloaded Endpoint
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if reloaded.Headers == nil {
		t.Fatal("expected Headers to round-trip to non-nil empty, got nil")
	}
	if len(reloaded.Headers) != 0 {
		t.Fatalf("expected empty Headers, got %+v", reloaded.Headers)
	}
}

func TestLoadTestConfigDurationFields(t *testing.T) {
	rampUp := 2 * time.Second
	cfg := LoadTestConfig{
		Concurrency: 4,
		Duration:    10 * time.Second,
		RampUp:      &rampUp,
	}
	if cfg.RampUp == nil || *cfg.RampUp >= cfg.Duration {
		t.Fatalf("expected ramp up strictly less than duration, got %+v", cfg)
	}
}
