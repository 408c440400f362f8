package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings of the client.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	DataDir        string
	StrictRestore  bool
	LogLevel       string
	LogFormat      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.DataDir = defaultDataDir()
	c.StrictRestore = false
	c.LogLevel = "info"
	c.LogFormat = "text"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "scholarhub")
	}
	return ".scholarhub"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// mustPositiveTimeout panics unless d can serve as the per-request timeout.
// http.Client reads zero as "no timeout".
func mustPositiveTimeout(source string, d time.Duration) time.Duration {
	if d <= 0 {
		panic(fmt.Errorf("%s: request timeout must be positive, got %s", source, d))
	}
	return d
}
