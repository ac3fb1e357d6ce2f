package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_appliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Pipeline.FastPathMinChars != 80 {
		t.Errorf("fast path min = %d", cfg.Pipeline.FastPathMinChars)
	}
	if cfg.Pipeline.RasterDPI != 200 {
		t.Errorf("raster dpi = %v", cfg.Pipeline.RasterDPI)
	}
	if cfg.Fraud.ManipulationScore != 50 {
		t.Errorf("manipulation score = %d", cfg.Fraud.ManipulationScore)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("language = %q", cfg.OCR.Language)
	}
}

func TestLoad_expandsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  database_path: ./audit.db\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, "audit.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestWatchConfig_recursiveDefault(t *testing.T) {
	w := &WatchConfig{}
	if !w.RecursiveOrDefault() {
		t.Error("recursive should default to true")
	}
	f := false
	w.Recursive = &f
	if w.RecursiveOrDefault() {
		t.Error("explicit false should win")
	}
}
