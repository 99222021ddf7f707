package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plaza.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	path := writeConfigFile(t, `{
		"backend_url": "https://demo.example.co",
		"anon_key": "anon-key",
		"local_db_path": "/tmp/state.db",
		"request_timeout": "45s"
	}`)
	os.Args = []string{"plaza", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://demo.example.co", cfg.BackendURL)
	assert.Equal(t, "anon-key", cfg.AnonKey)
	assert.Equal(t, "/tmp/state.db", cfg.LocalDBPath)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
}

func TestParseJson_PartialFileKeepsDefaults(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	path := writeConfigFile(t, `{"anon_key": "only-key"}`)
	os.Args = []string{"plaza", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "only-key", cfg.AnonKey)
	assert.Equal(t, "http://127.0.0.1:54321", cfg.BackendURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestParseJson_NoFlagIsNoop(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = []string{"plaza"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://127.0.0.1:54321", cfg.BackendURL)
}
