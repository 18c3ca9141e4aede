package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Pagination.DefaultLimit != 20 || cfg.Pagination.MaxLimit != 1000 {
		t.Errorf("Pagination = %+v, want defaults 20/1000", cfg.Pagination)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  addr: \":9090\"\npagination:\n  default_limit: 5\nstorage:\n  driver: postgres\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Pagination.DefaultLimit != 5 {
		t.Errorf("Pagination.DefaultLimit = %d, want 5", cfg.Pagination.DefaultLimit)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("Storage.Driver = %q, want postgres", cfg.Storage.Driver)
	}
	// Untouched settings keep their defaults.
	if cfg.Pagination.MaxLimit != 1000 {
		t.Errorf("Pagination.MaxLimit = %d, want default 1000", cfg.Pagination.MaxLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_SERVER_ADDR", ":7070")
	t.Setenv("CATALOG_CURSOR_SECRET", "env-secret")
	t.Setenv("CATALOG_DATABASE_HOST", "db.internal")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.Cursor.Secret != "env-secret" {
		t.Errorf("Cursor.Secret = %q, want env-secret", cfg.Cursor.Secret)
	}
	if cfg.Storage.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Storage.Database.Host)
	}
}
