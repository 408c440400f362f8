package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "stub.json")
	b, err := json.Marshal(map[string]any{
		"endpoint_addr": ":9000",
		"secret_key":    "from-json",
		"token_ttl":     "90s",
		"seed":          false,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	tests := []struct {
		name string
		args []string
		want Config
	}{
		{
			name: "defaults",
			args: []string{"stubapi"},
			want: Config{EndpointAddr: ":8080", TokenTTL: time.Hour, Seed: true, LogLevel: "info", LogFormat: "json"},
		},
		{
			name: "json overlay",
			args: []string{"stubapi", "-c", path},
			want: Config{EndpointAddr: ":9000", SecretKey: "from-json", TokenTTL: 90 * time.Second, LogLevel: "info", LogFormat: "json"},
		},
		{
			name: "flags win",
			args: []string{"stubapi", "-config", path, "-a", ":7000", "-t", "5", "-seed=true", "-f", "text"},
			want: Config{EndpointAddr: ":7000", SecretKey: "from-json", TokenTTL: 5 * time.Minute, Seed: true, LogLevel: "info", LogFormat: "text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			got := LoadConfig()
			assert.Empty(t, cmp.Diff(tt.want, *got))
		})
	}
}

func TestParseFlags_BadValuePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"stubapi", "-t", "soon"}

	require.Panics(t, func() { parseFlags(&Config{}) })
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"stubapi", "-c", filepath.Join(t.TempDir(), "absent.json")}

	require.Panics(t, func() { parseJson(&Config{}) })
}
