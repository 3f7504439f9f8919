package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/restkit/restkit/pkg/apperr"
)

// VariableCatalog is the on-disk shape of <home>/.rest-api-tui/variables.json.
type VariableCatalog struct {
	Name        string            `json:"name"`
	Variables   map[string]string `json:"variables"`
	Description string            `json:"description,omitempty"`
}

func (s *Store) variablesPath() string {
	return filepath.Join(s.baseDir, "variables.json")
}

// LoadVariables reads the variable catalog, returning an empty catalog if
// the file is absent, equivalent to an empty set.
func (s *Store) LoadVariables() (VariableCatalog, error) {
	data, err := os.ReadFile(s.variablesPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return VariableCatalog{Variables: map[string]string{}}, nil
		}
		return VariableCatalog{}, &apperr.StorageIO{Msg: "reading variable catalog", Err: err}
	}

	var cat VariableCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return VariableCatalog{}, &apperr.StorageJSON{Msg: "parsing variable catalog", Err: err}
	}
	if cat.Variables == nil {
		cat.Variables = map[string]string{}
	}
	return cat, nil
}

// SaveVariables serializes cat to variables.json.tmp then renames it over
// variables.json, the same atomic-write discipline as collections.
func (s *Store) SaveVariables(cat VariableCatalog) error {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return &apperr.StorageIO{Msg: "creating base directory", Err: err}
	}

	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return &apperr.StorageJSON{Msg: "marshaling variable catalog", Err: err}
	}

	finalPath := s.variablesPath()
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return &apperr.StorageIO{Msg: "writing " + tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return &apperr.StorageIO{Msg: "renaming " + tmpPath + " to " + finalPath, Err: err}
	}
	return nil
}
