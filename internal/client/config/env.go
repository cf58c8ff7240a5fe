package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with values from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it (godotenv does not override existing variables).
//
// Variables:
//
//	HERBASCAN_BASE_URL   catalog origin
//	HERBASCAN_TIMEOUT    request timeout in seconds
//	HERBASCAN_DB         path of the local session store
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("HERBASCAN_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HERBASCAN_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("HERBASCAN_DB"); v != "" {
		cfg.DatabasePath = v
	}
}
