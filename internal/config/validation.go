package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate validates the configuration.
func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	if err := validateState(&cfg.State); err != nil {
		return err
	}
	if err := validateWatcher(&cfg.Watcher); err != nil {
		return err
	}
	return validateLogging(&cfg.Logging)
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	if cfg.Host == "" {
		return fmt.Errorf("server.host cannot be empty")
	}
	if cfg.HeartbeatSeconds < 1 {
		return fmt.Errorf("server.heartbeat_seconds must be at least 1")
	}
	return nil
}

func validateState(cfg *StateConfig) error {
	seen := make(map[string]bool, len(cfg.Properties))
	for _, p := range cfg.Properties {
		if p == "" {
			return fmt.Errorf("state.properties cannot contain an empty id")
		}
		if seen[p] {
			return fmt.Errorf("state.properties contains duplicate id %q", p)
		}
		seen[p] = true
	}
	return nil
}

func validateWatcher(cfg *WatcherConfig) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("watcher.debounce_ms cannot be negative")
	}
	if cfg.DebounceMS > 10000 {
		return fmt.Errorf("watcher.debounce_ms cannot exceed 10000")
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	if _, err := zerolog.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("logging.level %q is invalid: %w", cfg.Level, err)
	}
	switch cfg.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Format)
	}
	return nil
}
