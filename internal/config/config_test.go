package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Transport.Timeout != "30s" {
		t.Errorf("Transport.Timeout = %q, want 30s", cfg.Transport.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.History.Path == "" {
		t.Error("History.Path should have a default")
	}

	d, err := cfg.TransportTimeout()
	if err != nil {
		t.Fatalf("TransportTimeout: %v", err)
	}
	if d != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", d)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
transport:
  timeout: 5s
plugins:
  paths:
    - ./plugins/headerstamp.so
history:
  enabled: true
  path: ${RESTHOOK_TEST_HOME}/history.db
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RESTHOOK_TEST_HOME", "/tmp/resthook-test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Transport.Timeout != "5s" {
		t.Errorf("Transport.Timeout = %q", cfg.Transport.Timeout)
	}
	if len(cfg.Plugins.Paths) != 1 || cfg.Plugins.Paths[0] != "./plugins/headerstamp.so" {
		t.Errorf("Plugins.Paths = %v", cfg.Plugins.Paths)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.Path != "/tmp/resthook-test/history.db" {
		t.Errorf("History.Path = %q, env substitution failed", cfg.History.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("transport:\n  timeout: 5s\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RESTHOOK_TRANSPORT__TIMEOUT", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport.Timeout != "2s" {
		t.Errorf("Transport.Timeout = %q, want env override 2s", cfg.Transport.Timeout)
	}
}

func TestTransportTimeout_Invalid(t *testing.T) {
	cfg := &Config{Transport: TransportConfig{Timeout: "soon"}}
	if _, err := cfg.TransportTimeout(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
