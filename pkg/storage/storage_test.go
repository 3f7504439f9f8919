package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/restkit/restkit/pkg/apperr"
	"github.com/restkit/restkit/pkg/collection"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	c := collection.NewCollection("Demo")
	c.AddEndpoint(collection.NewEndpoint("List", collection.MethodGet, "https://example.test/u"))

	if err := s.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := s.Load(c.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if reloaded.Name != c.Name {
		t.Fatalf("got name %q, want %q", reloaded.Name, c.Name)
	}
	if len(reloaded.Endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(reloaded.Endpoints))
	}
}

func TestLoadMissingReportsNotFound(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Load("nonexistent")

	var notFound *apperr.StorageNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected StorageNotFound, got %v", err)
	}
}

func TestDeleteMissingReportsNotFound(t *testing.T) {
	s := New(t.TempDir())
	err := s.Delete("nonexistent")

	var notFound *apperr.StorageNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected StorageNotFound, got %v", err)
	}
}

func TestLoadAllSkipsUnparseableFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	c := collection.NewCollection("Good")
	if err := s.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := os.WriteFile(filepath.Join(s.collectionsDir(), "bad.json"), []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("writing bad file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.collectionsDir(), "ignored.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("writing non-json file: %v", err)
	}

	all, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 1 || all[0].Name != "Good" {
		t.Fatalf("got %+v, want one collection named Good", all)
	}
}

func TestAtomicWriteSurvivesCrashBeforeRename(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	c := collection.NewCollection("Demo")
	if err := s.Save(c); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	// Simulate a crash mid-save: write an updated tmp file, then delete it
	// before the rename would have happened, leaving the original intact.
	updated := c
	updated.Name = "ShouldNotPersist"
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	tmpPath := s.collectionPath(c.ID) + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		t.Fatalf("writing tmp: %v", err)
	}
	if err := os.Remove(tmpPath); err != nil {
		t.Fatalf("removing tmp: %v", err)
	}

	reloaded, err := s.Load(c.ID)
	if err != nil {
		t.Fatalf("expected original file still parseable: %v", err)
	}
	if reloaded.Name != "Demo" {
		t.Fatalf("got name %q, want original Demo", reloaded.Name)
	}
}

func TestVariablesAbsentFileIsEmptySet(t *testing.T) {
	s := New(t.TempDir())
	cat, err := s.LoadVariables()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.Variables) != 0 {
		t.Fatalf("expected empty set, got %+v", cat.Variables)
	}
}

func TestVariablesSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	cat := VariableCatalog{
		Name:      "default",
		Variables: map[string]string{"uid": "7"},
	}
	if err := s.SaveVariables(cat); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := s.LoadVariables()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Variables["uid"] != "7" {
		t.Fatalf("got %+v", reloaded.Variables)
	}
}
