package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadDefaults verifies a missing config file yields the reference
// configuration.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Resume.MinGap != 2*time.Second {
		t.Errorf("min_gap default wrong: %v", cfg.Resume.MinGap)
	}
	if cfg.Resume.Expiry != 4*time.Hour {
		t.Errorf("expiry default wrong: %v", cfg.Resume.Expiry)
	}
	if cfg.Resume.RepromptDebounce != 10*time.Second {
		t.Errorf("reprompt_debounce default wrong: %v", cfg.Resume.RepromptDebounce)
	}
	if cfg.Resume.RetryDelay != 20*time.Second {
		t.Errorf("retry_delay default wrong: %v", cfg.Resume.RetryDelay)
	}
	if cfg.Start.RequireNote {
		t.Error("require_note should default to false")
	}
	if cfg.Export.GroupBy != "project-date-task" {
		t.Errorf("export default wrong: %q", cfg.Export.GroupBy)
	}
	if cfg.DataDir == "" {
		t.Error("data_dir should have a default")
	}
}

// TestLoadFileOverrides verifies config.yaml values win over defaults.
func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := "resume:\n  expiry: 1h\nstart:\n  require_note: true\nexport:\n  group_by: date\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Resume.Expiry != time.Hour {
		t.Errorf("expiry override ignored: %v", cfg.Resume.Expiry)
	}
	if !cfg.Start.RequireNote {
		t.Error("require_note override ignored")
	}
	if cfg.Export.GroupBy != "date" {
		t.Errorf("group_by override ignored: %q", cfg.Export.GroupBy)
	}
	// Untouched keys keep their defaults.
	if cfg.Resume.MinGap != 2*time.Second {
		t.Errorf("min_gap default lost: %v", cfg.Resume.MinGap)
	}
}
