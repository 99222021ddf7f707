package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dsmatveev/plaza/internal/flagx"
	"github.com/dsmatveev/plaza/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It uses
// timex.Duration so the file can specify timeouts either as strings like
// "10s" or as integer nanoseconds.
type JsonConfig struct {
	BackendURL     string         `json:"backend_url"`
	AnonKey        string         `json:"anon_key"`
	LocalDBPath    string         `json:"local_db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent file path means no JSON stage. Only non-zero fields
// override.
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

	if jc.BackendURL != "" {
		cfg.BackendURL = jc.BackendURL
	}
	if jc.AnonKey != "" {
		cfg.AnonKey = jc.AnonKey
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
