// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development API server.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Empty means a random
//     secret per run, which invalidates every issued token on restart.
//   - TokenTTL: lifetime of issued tokens.
//   - Seed: create the demo accounts at startup.
//   - LogLevel / LogFormat: see logging.New.
type Config struct {
	EndpointAddr string
	SecretKey    string
	TokenTTL     time.Duration
	Seed         bool
	LogLevel     string
	LogFormat    string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.SecretKey = ""
	c.TokenTTL = 60 * time.Minute
	c.Seed = true
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
