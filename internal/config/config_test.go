package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  max_upload_bytes: 1048576
  request_timeout: 15s
session:
  ttl: 30m
  max_sessions: 10
analysis:
  max_rows: 500
  cluster_seed: 7
storage:
  database_path: "test.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("unexpected server addr: %s", cfg.Server.Addr())
	}
	if cfg.Server.MaxUploadBytes != 1<<20 || cfg.Server.RequestTimeout != 15*time.Second {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Session.TTL != 30*time.Minute || cfg.Session.MaxSessions != 10 {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Analysis.MaxRows != 500 || cfg.Analysis.ClusterSeed != 7 || cfg.Analysis.MaxIterations != 300 {
		t.Errorf("unexpected analysis config: %+v", cfg.Analysis)
	}
	if !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database_path should be absolute: %s", cfg.Storage.DatabasePath)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/db/uploads.db"
watch:
  directories: ["./inbox"]
`)
	dir := filepath.Dir(path)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "uploads.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	if len(cfg.Watch.Directories) != 1 || cfg.Watch.Directories[0] != filepath.Join(dir, "inbox") {
		t.Errorf("watch directories = %v", cfg.Watch.Directories)
	}
}

func TestLoad_memoryDatabaseKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, "storage:\n  database_path: \":memory:\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.DatabasePath != ":memory:" {
		t.Errorf("database_path = %s", cfg.Storage.DatabasePath)
	}
}

func TestLoad_errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected parse error")
	}
	_, err := Load(writeConfig(t, "server:\n  port: 70000\nsession:\n  ttl: -1s\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "session.ttl") {
		t.Errorf("validation error should name every bad field: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8000 {
		t.Errorf("default server: %+v", cfg.Server)
	}
	if cfg.Server.MaxUploadBytes != 32<<20 || cfg.Server.RequestTimeout != time.Minute {
		t.Errorf("default server limits: %+v", cfg.Server)
	}
	if cfg.Session.TTL != 2*time.Hour || cfg.Session.MaxSessions != 256 {
		t.Errorf("default session: %+v", cfg.Session)
	}
	if cfg.Analysis.ClusterSeed != 42 || cfg.Analysis.MaxIterations != 300 {
		t.Errorf("default analysis: %+v", cfg.Analysis)
	}
	if len(cfg.Watch.Extensions) != 5 || cfg.Watch.Extensions[0] != ".csv" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if cfg.Watch.Recursive != nil {
		t.Error("recursive should stay unset without directories")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_false", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
	t.Run("true_returns_true", func(t *testing.T) {
		v := true
		w := &WatchConfig{Recursive: &v}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Server.Port = 9090
	cfg.Session.TTL = 45 * time.Minute
	cfg.Storage.DatabasePath = "/tmp/uploads.db"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Session.TTL != 45*time.Minute {
		t.Errorf("loaded: %+v %+v", loaded.Server, loaded.Session)
	}
}
