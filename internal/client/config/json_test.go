package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	full := writeTempJSON(t, map[string]any{
		"api_base_url":    "https://www.example/api",
		"request_timeout": "15s",
		"data_dir":        "/var/lib/sh",
		"strict_restore":  true,
		"log_level":       "warn",
		"log_format":      "json",
	})

	t.Run("loads from -config", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, Config{
			APIBaseURL: "https://www.example/api", RequestTimeout: 15 * time.Second,
			DataDir: "/var/lib/sh", StrictRestore: true, LogLevel: "warn", LogFormat: "json",
		}, *cfg)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"request_timeout": 2000000000})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "http://127.0.0.1:8080/api", cfg.APIBaseURL)
	})

	t.Run("no flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{APIBaseURL: "defaults", RequestTimeout: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("comments and trailing commas are accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "commented.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			// local stub API
			"api_base_url": "http://127.0.0.1:9000/api",
			/* fail fast */
			"request_timeout": "1500ms",
		}`), 0o600))
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "http://127.0.0.1:9000/api", cfg.APIBaseURL)
		assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("bad duration panics", func(t *testing.T) {
		bad := writeTempJSON(t, map[string]any{"request_timeout": "soon"})
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("non-positive timeout panics", func(t *testing.T) {
		for _, v := range []any{"0s", "-1s", 0} {
			bad := writeTempJSON(t, map[string]any{"request_timeout": v})
			os.Args = []string{"testbin", "-c", bad}

			require.Panics(t, func() { parseJson(&Config{}) }, "request_timeout %v", v)
		}
	})
}
