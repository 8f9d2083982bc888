// Package config loads the verifier daemon configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds daemon configuration.
type Config struct {
	// ListenAddr is the HTTP listen address for the status API.
	ListenAddr string `yaml:"listen_addr"`

	// DBPath is the SQLite database path. Empty means the XDG default.
	DBPath string `yaml:"db_path"`

	// PlatformInfo pre-configures the measurement engines. Empty
	// leaves the engine's detected defaults.
	PlatformInfo string `yaml:"platform_info"`

	// PreferredLanguages is the Accept-Language style list used when
	// rendering reason strings for local operators.
	PreferredLanguages string `yaml:"preferred_languages"`

	// SelfCheckPaths lists files or directories measured at startup as
	// a baseline for the daemon's own host. Empty disables the
	// self-check.
	SelfCheckPaths []string `yaml:"self_check_paths"`
}

// DefaultConfig returns configuration with defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:         ":18070",
		PreferredLanguages: "en",
	}
}

// Load reads configuration from a YAML file, starting from defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("ATTESTD_LISTEN"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("ATTESTD_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("ATTESTD_PLATFORM_INFO"); v != "" {
		c.PlatformInfo = v
	}
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}
