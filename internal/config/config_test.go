package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := applyDefaultsAndValidate(&cfg); err != nil {
		t.Fatalf("DefaultConfig is invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "whi.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whi.yaml")
	cfg := DefaultConfig()
	cfg.DefaultShell = "fish"
	cfg.DefaultColor = "never"
	cfg.HistoryRetention = 200
	cfg.AutoActivate = false

	if _, err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestEnsureFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "whi.yaml")
	cfg, err := EnsureFile(path)
	if err != nil {
		t.Fatalf("EnsureFile: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("file was not actually written: %v", err)
	}
}

func TestInvalidShellRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whi.yaml")
	cfg := DefaultConfig()
	cfg.DefaultShell = "cmd.exe"
	if _, err := Save(path, cfg); err == nil {
		t.Fatal("expected validation error for unknown shell")
	}
}

func TestInvalidColorRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whi.yaml")
	cfg := DefaultConfig()
	cfg.DefaultColor = "rainbow"
	if _, err := Save(path, cfg); err == nil {
		t.Fatal("expected validation error for unknown color mode")
	}
}

func TestRetentionOutOfRangeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whi.yaml")
	cfg := DefaultConfig()
	cfg.HistoryRetention = 1
	if _, err := Save(path, cfg); err == nil {
		t.Fatal("expected validation error for too-small retention")
	}
}

func TestPathWithinDir(t *testing.T) {
	baseDir := t.TempDir()
	inside := filepath.Join(baseDir, "whi.yaml")
	outside := filepath.Join(filepath.Dir(baseDir), "elsewhere", "whi.yaml")
	if !pathWithinDir(inside, baseDir) {
		t.Fatal("expected inside path to be within baseDir")
	}
	if pathWithinDir(outside, baseDir) {
		t.Fatal("expected outside path to not be within baseDir")
	}
}
