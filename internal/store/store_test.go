package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/timekeepapp/timekeep/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

// TestLoadMissingCollection verifies a never-saved collection reports
// ErrNotFound.
func TestLoadMissingCollection(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.LoadEntries(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestRoundTrip verifies save-then-load returns a deep-equal value,
// including optional-field absence.
func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)

	end := time.Date(2024, 1, 2, 10, 30, 0, 0, time.Local)
	reason := models.EndReasonSystem
	entries := []models.TimeEntry{
		{
			ID:        "e1",
			ProjectID: "p1",
			StartAt:   time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local),
			// open entry: EndAt, EndedReason, Note all absent
		},
		{
			ID:          "e2",
			ProjectID:   "p1",
			StartAt:     time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local),
			EndAt:       &end,
			EndedReason: &reason,
			Note:        "standup",
		},
	}

	if err := s.SaveEntries(entries); err != nil {
		t.Fatalf("failed to save entries: %v", err)
	}
	loaded, err := s.LoadEntries()
	if err != nil {
		t.Fatalf("failed to load entries: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[0].EndAt != nil || loaded[0].EndedReason != nil || loaded[0].Note != "" {
		t.Error("optional fields of the open entry should load as absent")
	}
	if !loaded[0].StartAt.Equal(entries[0].StartAt) {
		t.Error("start timestamp did not round-trip")
	}
	if loaded[1].EndAt == nil || !loaded[1].EndAt.Equal(end) {
		t.Error("end timestamp did not round-trip")
	}
	if loaded[1].EndedReason == nil || *loaded[1].EndedReason != models.EndReasonSystem {
		t.Error("ended reason did not round-trip")
	}
	if loaded[1].Note != "standup" {
		t.Error("note did not round-trip")
	}
}

// TestLoadOrDefaultPersistsDefault verifies the first-load miss writes the
// empty collection to disk.
func TestLoadOrDefaultPersistsDefault(t *testing.T) {
	s := newTestStore(t)

	projects, err := s.LoadOrDefaultProjects()
	if err != nil {
		t.Fatalf("LoadOrDefaultProjects failed: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected an empty default, got %d projects", len(projects))
	}

	if _, err := os.Stat(s.Path(CollectionProjects)); err != nil {
		t.Errorf("default collection was not persisted: %v", err)
	}

	// A second load goes through the normal path.
	if _, err := s.LoadProjects(); err != nil {
		t.Errorf("loading the persisted default failed: %v", err)
	}
}

// TestLoadOlderDataWithoutNote verifies documents written before the note
// field existed load as "no note", not an error.
func TestLoadOlderDataWithoutNote(t *testing.T) {
	s := newTestStore(t)

	raw := `[{"id":"e1","projectId":"p1","startAt":"2024-01-02T09:00:00Z"}]`
	if err := os.WriteFile(s.Path(CollectionEntries), []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write raw collection: %v", err)
	}

	entries, err := s.LoadEntries()
	if err != nil {
		t.Fatalf("failed to load older data: %v", err)
	}
	if len(entries) != 1 || entries[0].Note != "" {
		t.Error("missing note field should load as an empty note")
	}
	if !entries[0].Running() {
		t.Error("missing endAt should load as a running entry")
	}
}

// TestSaveReplacesAtomically verifies no temp files are left behind and the
// content is fully replaced.
func TestSaveReplacesAtomically(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveProjects([]models.Project{{ID: "p1", Name: "One"}}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := s.SaveProjects([]models.Project{{ID: "p2", Name: "Two"}}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	projects, err := s.LoadProjects()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p2" {
		t.Error("save should fully replace the collection")
	}

	leftovers, err := filepath.Glob(filepath.Join(s.Dir(), "*.tmp"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
