package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yllada/maestral-gtk/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ConfigName != "maestral" {
		t.Errorf("ConfigName = %v, want maestral", cfg.ConfigName)
	}
	if cfg.ListingWorkers != common.DefaultListingWorkers {
		t.Errorf("ListingWorkers = %v, want %v", cfg.ListingWorkers, common.DefaultListingWorkers)
	}
	if !cfg.ShowNotifications {
		t.Error("ShowNotifications should be true by default")
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %v, want auto", cfg.Theme)
	}
}

func TestLoadFrom_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %v, want %v", cfg.Path(), path)
	}
	if !common.FileExists(path) {
		t.Error("LoadFrom should write the defaults when the file is missing")
	}
}

func TestLoadFrom_ValidatesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "config_name: work\ntheme: neon\nlisting_workers: 0\nstatus_interval: 10ms\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.ConfigName != "work" {
		t.Errorf("ConfigName = %v, want work", cfg.ConfigName)
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %v, want fallback auto", cfg.Theme)
	}
	if cfg.ListingWorkers != common.DefaultListingWorkers {
		t.Errorf("ListingWorkers = %v, want %v", cfg.ListingWorkers, common.DefaultListingWorkers)
	}
	if cfg.StatusInterval != common.StatusInterval {
		t.Errorf("StatusInterval = %v, want %v", cfg.StatusInterval, common.StatusInterval)
	}
}

func TestLoadFrom_CapsListingWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listing_workers: 64\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.ListingWorkers != common.MaxListingWorkers {
		t.Errorf("ListingWorkers = %v, want %v", cfg.ListingWorkers, common.MaxListingWorkers)
	}
}

func TestLoadFrom_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("auto_reconnect: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if !errors.Is(err, common.ErrConfigLoad) {
		t.Errorf("LoadFrom() error = %v, want ErrConfigLoad", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.path = path
	cfg.ConfigName = "personal"
	cfg.StatusInterval = 5 * time.Second

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.ConfigName != "personal" || loaded.StatusInterval != 5*time.Second {
		t.Errorf("loaded = %+v, want config_name personal and 5s interval", loaded)
	}
}
