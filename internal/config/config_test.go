package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("USDINSPECT_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.UI.FrameStep != 1 {
		t.Errorf("frame step = %d, want 1", cfg.UI.FrameStep)
	}
	if cfg.UI.TreeIndent != 2 {
		t.Errorf("tree indent = %d, want 2", cfg.UI.TreeIndent)
	}
	if cfg.UI.MaxRecents != 20 {
		t.Errorf("max recents = %d, want 20", cfg.UI.MaxRecents)
	}
	if !strings.Contains(cfg.Database.Path, "usdinspect") {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("USDINSPECT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Log.Level = "debug"
	cfg.UI.FrameStep = 5
	cfg.UI.MaxRecents = 3

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", got.Log.Level)
	}
	if got.UI.FrameStep != 5 {
		t.Errorf("frame step = %d, want 5", got.UI.FrameStep)
	}
	if got.UI.MaxRecents != 3 {
		t.Errorf("max recents = %d, want 3", got.UI.MaxRecents)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("USDINSPECT_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	t.Setenv("USDINSPECT_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}
}
