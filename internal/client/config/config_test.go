package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:3001", c.ServerURL)
	assert.Equal(t, "authkeeper", c.StateDir)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Setenv("AUTHKEEPER_SERVER_URL", "https://auth.example")
	t.Setenv("AUTHKEEPER_REQUEST_TIMEOUT", "3s")
	os.Args = []string{"cmd", "-d", "/tmp/state"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "https://auth.example", cfg.ServerURL)
	assert.Equal(t, "/tmp/state", cfg.StateDir)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)

	os.Args = []string{"cmd", "-a", "http://flag:1"}
	cfg = LoadConfig()
	assert.Equal(t, "http://flag:1", cfg.ServerURL)
}

func TestParseEnv_BadTimeoutPanics(t *testing.T) {
	t.Setenv("AUTHKEEPER_REQUEST_TIMEOUT", "soon")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.ServerURL = "localhost:3001" }, "server URL"},
		{"ftp url", func(c *Config) { c.ServerURL = "ftp://host" }, "server URL"},
		{"no state dir", func(c *Config) { c.StateDir = "" }, "state directory"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "request timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
