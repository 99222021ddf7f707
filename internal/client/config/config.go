// Package config loads runtime settings for the plaza CLI from defaults, an
// optional JSON file, and command-line flags, in that order of precedence.
package config

import "time"

// Config holds runtime settings for the plaza CLI.
//
// Fields:
//   - BackendURL: base URL of the hosted backend (auth + data services).
//   - AnonKey: the backend's public API key sent with every request.
//   - LocalDBPath: path of the SQLite file holding persisted client state.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	BackendURL     string
	AnonKey        string
	LocalDBPath    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:54321"
	c.AnonKey = ""
	c.LocalDBPath = "plaza.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given) and command-line flags. Later
// sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
