// Package store persists named JSON document collections on disk. Each
// collection is a single file replaced atomically on save; loading a missing
// collection reports ErrNotFound so callers can seed a default.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/timekeepapp/timekeep/pkg/models"
)

// Collection names understood by the rest of the application.
const (
	CollectionProjects = "projects"
	CollectionEntries  = "entries"
)

// ErrNotFound is returned by Load when the collection has never been saved.
var ErrNotFound = errors.New("collection not found")

// Store reads and writes JSON collections under a single data directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file a collection is stored at.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads a collection into out. Returns ErrNotFound when the collection
// file does not exist.
func (s *Store) Load(name string, out interface{}) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode collection %s: %w", name, err)
	}
	return nil
}

// Save writes a collection atomically: encode to a temp file in the same
// directory, then rename over the destination.
func (s *Store) Save(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", name, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, name+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection %s: %w", name, err)
	}
	return nil
}

// LoadProjects returns the projects collection, or ErrNotFound.
func (s *Store) LoadProjects() ([]models.Project, error) {
	var projects []models.Project
	if err := s.Load(CollectionProjects, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// SaveProjects replaces the projects collection.
func (s *Store) SaveProjects(projects []models.Project) error {
	return s.Save(CollectionProjects, projects)
}

// LoadEntries returns the entries collection, or ErrNotFound.
func (s *Store) LoadEntries() ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := s.Load(CollectionEntries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveEntries replaces the entries collection.
func (s *Store) SaveEntries(entries []models.TimeEntry) error {
	return s.Save(CollectionEntries, entries)
}

// LoadOrDefaultProjects loads the projects collection, persisting and
// returning an empty one on first run.
func (s *Store) LoadOrDefaultProjects() ([]models.Project, error) {
	projects, err := s.LoadProjects()
	if errors.Is(err, ErrNotFound) {
		empty := []models.Project{}
		if err := s.SaveProjects(empty); err != nil {
			return nil, err
		}
		return empty, nil
	}
	return projects, err
}

// LoadOrDefaultEntries loads the entries collection, persisting and returning
// an empty one on first run.
func (s *Store) LoadOrDefaultEntries() ([]models.TimeEntry, error) {
	entries, err := s.LoadEntries()
	if errors.Is(err, ErrNotFound) {
		empty := []models.TimeEntry{}
		if err := s.SaveEntries(empty); err != nil {
			return nil, err
		}
		return empty, nil
	}
	return entries, err
}
