// Package config loads client configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client settings.
type Config struct {
	// ServerURL is the backend base URL.
	ServerURL string `yaml:"server_url"`
	// TimeoutSeconds bounds each request round-trip.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// StatePath is the local state database file.
	StatePath string `yaml:"state_path"`
	// LogPath optionally tees logs to a file.
	LogPath string `yaml:"log_path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:      "http://localhost:8080",
		TimeoutSeconds: 15,
		StatePath:      "evidenca.sqlite3",
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies EVIDENCA_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if v := os.Getenv("EVIDENCA_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("EVIDENCA_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("EVIDENCA_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parsing EVIDENCA_TIMEOUT_SECONDS: %w", err)
		}
		cfg.TimeoutSeconds = seconds
	}

	if cfg.ServerURL == "" {
		return cfg, fmt.Errorf("server_url must not be empty")
	}
	if cfg.TimeoutSeconds <= 0 {
		return cfg, fmt.Errorf("timeout_seconds must be positive")
	}

	return cfg, nil
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
