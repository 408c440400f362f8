package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scholarhub/internal/flagx"
	"github.com/dmitrijs2005/scholarhub/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of Config. Pointer fields distinguish
// "absent" from zero values so a partial file only overrides what it sets.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DataDir        *string         `json:"data_dir"`
	StrictRestore  *bool           `json:"strict_restore"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. Without the
// flag it does nothing. Read or decode errors and a non-positive
// request_timeout panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = mustPositiveTimeout("request_timeout", jc.RequestTimeout.Duration)
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.StrictRestore != nil {
		cfg.StrictRestore = *jc.StrictRestore
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
}
