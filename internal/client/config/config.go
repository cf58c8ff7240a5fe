// Package config holds runtime settings for the catalog client.
package config

import "time"

// Config holds runtime settings for the herbascan CLI.
//
// Fields:
//   - BaseURL: origin of the catalog service, e.g. "http://192.168.110.51:3000".
//   - RequestTimeout: per-request deadline for API calls.
//   - DatabasePath: path of the local sqlite file holding the session store.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:3000"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "herbascan.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), the environment (.env is honored), and finally
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
