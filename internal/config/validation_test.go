package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8790, HeartbeatSeconds: 30},
		State:   StateConfig{Properties: []string{"title", "color"}},
		Watcher: WatcherConfig{Enabled: true, DebounceMS: 100},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "port zero picks a free port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 0 and 65535",
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: "server.host cannot be empty",
		},
		{
			name:    "no heartbeat",
			mutate:  func(c *Config) { c.Server.HeartbeatSeconds = 0 },
			wantErr: "heartbeat_seconds",
		},
		{
			name:    "empty property id",
			mutate:  func(c *Config) { c.State.Properties = []string{"title", ""} },
			wantErr: "empty id",
		},
		{
			name:    "duplicate property id",
			mutate:  func(c *Config) { c.State.Properties = []string{"title", "title"} },
			wantErr: "duplicate id",
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watcher.DebounceMS = -1 },
			wantErr: "cannot be negative",
		},
		{
			name:    "debounce too long",
			mutate:  func(c *Config) { c.Watcher.DebounceMS = 20000 },
			wantErr: "cannot exceed",
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
