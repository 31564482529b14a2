package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNothingConfigured(t *testing.T) {
	// Neutralize any ambient overrides; empty values are ignored by Load.
	for _, key := range []string{EnvConfigFile, EnvBaseURL, EnvToken, EnvTimeout, EnvRetries, EnvLogLevel} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.nestegg.app", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Path())
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nestegg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  baseUrl: https://staging.nestegg.app
  timeout: 5s
  maxRetries: 4
logLevel: debug
`), 0o600))

	t.Setenv(EnvBaseURL, "https://env.nestegg.app")
	t.Setenv(EnvToken, "tok-123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.nestegg.app", cfg.API.BaseURL, "environment beats file")
	assert.Equal(t, "tok-123", cfg.API.Token)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout, "file beats defaults")
	assert.Equal(t, 4, cfg.API.MaxRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [not a mapping"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.API.MaxRetries = -1 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nestegg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  token: first\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "first", cfg.API.Token)

	w, err := NewWatcher(cfg, nil)
	require.NoError(t, err)
	defer w.Close()

	var mu sync.Mutex
	var seen []string
	w.OnReload(func(c Config) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c.API.Token)
	})

	require.NoError(t, os.WriteFile(path, []byte("api:\n  token: second\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "second"
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, "second", w.Current().API.Token)
}

func TestWatcherWithoutFileLayerIsInert(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	w, err := NewWatcher(cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
