package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("db:\n  host: localhost\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != StorePostgres || cfg.Server.Port != ":8080" || cfg.DB.Host != "localhost" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("store: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_ENV", "test")

	if _, err := Load(dir); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestLoad_EnvOverridesStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("store: postgres\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("STORE", "memory")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("expected memory store from env, got %q", cfg.Store)
	}
}
