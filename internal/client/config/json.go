package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/jpalacios/herbascan/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. The timeout is
// a duration string ("10s", "1m30s") so config files stay readable.
type JsonConfig struct {
	BaseURL        string `json:"base_url"`
	RequestTimeout string `json:"request_timeout"`
	DatabasePath   string `json:"database_path"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. When no file is named the function is a no-op. Read and
// unmarshal errors panic: a config file that exists but cannot be used is a
// startup defect, not a runtime condition.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout != "" {
		d, err := time.ParseDuration(jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
}
