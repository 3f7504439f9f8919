// Package storage persists collections and the variable catalog to disk
// under <home>/.rest-api-tui. An earlier YAML-per-request layout with no
// atomic rename discipline is replaced here with a JSON,
// write-tmp-then-rename store.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/restkit/restkit/pkg/apperr"
	"github.com/restkit/restkit/pkg/collection"
)

// Store is a collection store rooted at a base directory, normally
// <home>/.rest-api-tui.
type Store struct {
	baseDir string
}

// New returns a Store rooted at baseDir. Callers typically pass
// filepath.Join(home, ".rest-api-tui").
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultBaseDir returns <home>/.rest-api-tui using the user's home
// directory (the only environment dependency this package has).
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", &apperr.StorageIO{Msg: "resolving user home directory", Err: err}
	}
	return filepath.Join(home, ".rest-api-tui"), nil
}

func (s *Store) collectionsDir() string {
	return filepath.Join(s.baseDir, "collections")
}

func (s *Store) collectionPath(id string) string {
	return filepath.Join(s.collectionsDir(), id+".json")
}

// Save serializes c to <id>.json.tmp then renames it over <id>.json, the
// atomic-write discipline every writer here follows.
func (s *Store) Save(c collection.Collection) error {
	dir := s.collectionsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.StorageIO{Msg: "creating collections directory", Err: err}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return &apperr.StorageJSON{Msg: "marshaling collection " + c.ID, Err: err}
	}

	finalPath := s.collectionPath(c.ID)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return &apperr.StorageIO{Msg: "writing " + tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return &apperr.StorageIO{Msg: "renaming " + tmpPath + " to " + finalPath, Err: err}
	}
	return nil
}

// Load reads a single collection by id.
func (s *Store) Load(id string) (collection.Collection, error) {
	data, err := os.ReadFile(s.collectionPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return collection.Collection{}, &apperr.StorageNotFound{ID: id}
		}
		return collection.Collection{}, &apperr.StorageIO{Msg: "reading collection " + id, Err: err}
	}

	var c collection.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return collection.Collection{}, &apperr.StorageJSON{Msg: "parsing collection " + id, Err: err}
	}
	return c, nil
}

// LoadAll loads every collection in the collections directory, ignoring
// non-".json" files and silently skipping any file that fails to parse.
func (s *Store) LoadAll() ([]collection.Collection, error) {
	dir := s.collectionsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &apperr.StorageIO{Msg: "reading collections directory", Err: err}
	}

	var out []collection.Collection
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var c collection.Collection
		if err := json.Unmarshal(data, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Delete removes the file backing id, reporting apperr.StorageNotFound if
// absent.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.collectionPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &apperr.StorageNotFound{ID: id}
		}
		return &apperr.StorageIO{Msg: "deleting collection " + id, Err: err}
	}
	return nil
}
