package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scholarhub/internal/flagx"
	"github.com/dmitrijs2005/scholarhub/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the DTO read from the JSON config file. Absent fields keep
// their current value.
type JsonConfig struct {
	EndpointAddr *string         `json:"endpoint_addr"`
	SecretKey    *string         `json:"secret_key"`
	TokenTTL     *timex.Duration `json:"token_ttl"`
	Seed         *bool           `json:"seed"`
	LogLevel     *string         `json:"log_level"`
	LogFormat    *string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config into config. Without the
// flag nothing is loaded. Unreadable files or invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(file), c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.Seed != nil {
		config.Seed = *c.Seed
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.LogFormat != nil {
		config.LogFormat = *c.LogFormat
	}
}
