package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8790 {
		t.Errorf("default Port = %d, want 8790", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.HeartbeatSeconds != 30 {
		t.Errorf("default HeartbeatSeconds = %d, want 30", cfg.Server.HeartbeatSeconds)
	}
	if !cfg.Watcher.Enabled {
		t.Error("default Watcher.Enabled should be true")
	}
	if cfg.Watcher.DebounceMS != 100 {
		t.Errorf("default DebounceMS = %d, want 100", cfg.Watcher.DebounceMS)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("default logging = %+v", cfg.Logging)
	}
	if cfg.State.File != "" {
		t.Errorf("default State.File = %q, want empty", cfg.State.File)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9000
  pprof: true
state:
  file: state.yaml
  properties: [title, color]
watcher:
  debounce_ms: 250
logging:
  level: DEBUG
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 || !cfg.Server.Pprof {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.State.Properties) != 2 || cfg.State.Properties[0] != "title" {
		t.Errorf("properties = %v", cfg.State.Properties)
	}
	if !filepath.IsAbs(cfg.State.File) {
		t.Errorf("state file should be absolute, got %s", cfg.State.File)
	}
	if cfg.Watcher.DebounceMS != 250 {
		t.Errorf("DebounceMS = %d, want 250", cfg.Watcher.DebounceMS)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level should be lowercased, got %s", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OBSERVE_SERVER_PORT", "9100")
	t.Setenv("OBSERVE_STATE_PROPERTIES", "title, color")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Server.Port)
	}
	if len(cfg.State.Properties) != 2 || cfg.State.Properties[1] != "color" {
		t.Errorf("properties = %q", cfg.State.Properties)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestGetConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(home, ".observe") {
		t.Errorf("GetConfigDir() = %s", dir)
	}
}
