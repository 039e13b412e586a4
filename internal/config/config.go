// Package config handles configuration management for observe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	State   StateConfig   `mapstructure:"state" yaml:"state"`
	Watcher WatcherConfig `mapstructure:"watcher" yaml:"watcher"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host             string `mapstructure:"host" yaml:"host"`
	Port             int    `mapstructure:"port" yaml:"port"`
	HeartbeatSeconds int    `mapstructure:"heartbeat_seconds" yaml:"heartbeat_seconds"`
	Pprof            bool   `mapstructure:"pprof" yaml:"pprof"`
}

// StateConfig declares the observed document.
type StateConfig struct {
	// File is the YAML state file fed into the document. Empty disables it.
	File       string   `mapstructure:"file" yaml:"file"`
	Properties []string `mapstructure:"properties" yaml:"properties"`
}

// WatcherConfig holds state file watcher configuration.
type WatcherConfig struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	DebounceMS int  `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load loads configuration from files and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.observe")
		v.AddConfigPath("/etc/observe")
	}

	v.SetEnvPrefix("OBSERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// A missing config file is fine; defaults and env still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8790)
	v.SetDefault("server.heartbeat_seconds", 30)
	v.SetDefault("server.pprof", false)

	v.SetDefault("state.file", "")
	v.SetDefault("state.properties", []string{})

	v.SetDefault("watcher.enabled", true)
	v.SetDefault("watcher.debounce_ms", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// postProcess applies post-processing to configuration.
func postProcess(cfg *Config) error {
	// Env overrides arrive as a single comma-separated string.
	if len(cfg.State.Properties) == 1 && strings.Contains(cfg.State.Properties[0], ",") {
		cfg.State.Properties = strings.Split(cfg.State.Properties[0], ",")
	}
	for i, p := range cfg.State.Properties {
		cfg.State.Properties[i] = strings.TrimSpace(p)
	}

	if cfg.State.File != "" {
		absPath, err := filepath.Abs(cfg.State.File)
		if err != nil {
			return fmt.Errorf("failed to resolve state file path: %w", err)
		}
		cfg.State.File = absPath
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	return nil
}

// GetConfigDir returns the user config directory for observe.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".observe"), nil
}
