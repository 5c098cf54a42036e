package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "purdue"
	cfg.Backend.AppID = "687051f95e7cf7b0574dd06a"
	cfg.Voice.ListenTimeoutSec = 15
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "purdue" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "purdue")
	}
	if loaded.Backend.AppID != "687051f95e7cf7b0574dd06a" {
		t.Errorf("Backend.AppID = %q", loaded.Backend.AppID)
	}
	if loaded.Voice.ListenTimeoutSec != 15 {
		t.Errorf("Voice.ListenTimeoutSec = %d, want 15", loaded.Voice.ListenTimeoutSec)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	cfg := LoadOrDefault("/nonexistent/config.toml")
	if cfg.Browse.PriceCeiling != 1000 {
		t.Errorf("PriceCeiling = %v, want 1000", cfg.Browse.PriceCeiling)
	}
	if cfg.Voice.ActivationDelayMs != 500 {
		t.Errorf("ActivationDelayMs = %d, want 500", cfg.Voice.ActivationDelayMs)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
