package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}
	if cfg.DashboardPort != 8080 {
		t.Errorf("DashboardPort = %d, want default 8080", cfg.DashboardPort)
	}
	if cfg.SyncInterval != time.Minute {
		t.Errorf("SyncInterval = %v, want default 1m", cfg.SyncInterval)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `db_path: /tmp/elsewhere.db
primary_url: libsql://daylist.example.turso.io
sync_interval: 30s
dashboard_port: 9999
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}
	if cfg.DBPath != "/tmp/elsewhere.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.PrimaryURL != "libsql://daylist.example.turso.io" {
		t.Errorf("PrimaryURL = %q", cfg.PrimaryURL)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("SyncInterval = %v, want 30s", cfg.SyncInterval)
	}
	if cfg.DashboardPort != 9999 {
		t.Errorf("DashboardPort = %d, want 9999", cfg.DashboardPort)
	}
	// Unset keys keep their defaults.
	if cfg.InboxDir == "" {
		t.Error("InboxDir default was lost")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dashboard_port: 9999\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DAYLIST_DASHBOARD_PORT", "7777")
	t.Setenv("DAYLIST_AUTH_TOKEN", "secret-token")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}
	if cfg.DashboardPort != 7777 {
		t.Errorf("DashboardPort = %d, want env override 7777", cfg.DashboardPort)
	}
	if cfg.AuthToken != "secret-token" {
		t.Errorf("AuthToken = %q, want env value", cfg.AuthToken)
	}

	cfg, err = loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error: %v", err)
	}
	if cfg.DashboardPort != 7777 {
		t.Errorf("DashboardPort = %d after reload, want 7777", cfg.DashboardPort)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFrom(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
