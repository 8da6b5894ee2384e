package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.igdb.com/v4", cfg.IGDB.BaseURL)
	assert.Equal(t, "https://id.twitch.tv/oauth2/token", cfg.IGDB.TokenURL)
	assert.Equal(t, 500, cfg.IGDB.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.IGDB.TokenTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.RateLimit.MinInterval)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Cooldown)
	assert.Equal(t, 1, cfg.RateLimit.MaxRetries)
	assert.Equal(t, "./cache/covers", cfg.Cache.Directory)
	assert.Equal(t, "igdb_progress.json", cfg.Progress.File)
	assert.False(t, cfg.HasCredentials())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGDBCOVERS_CLIENT_ID", "env-id")
	t.Setenv("TWITCH_CLIENT_SECRET", "twitch-secret")
	t.Setenv("IGDBCOVERS_CACHE_DIR", "/tmp/covers")
	t.Setenv("IGDBCOVERS_PROGRESS_FILE", "/tmp/progress.json")
	t.Setenv("IGDBCOVERS_LOG_LEVEL", "debug")
	t.Setenv("IGDBCOVERS_MIN_INTERVAL", "1s")
	t.Setenv("IGDBCOVERS_BATCH_SIZE", "50")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-id", cfg.IGDB.ClientID)
	assert.Equal(t, "twitch-secret", cfg.IGDB.ClientSecret)
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, "/tmp/covers", cfg.Cache.Directory)
	assert.Equal(t, "/tmp/progress.json", cfg.Progress.File)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, time.Second, cfg.RateLimit.MinInterval)
	assert.Equal(t, 50, cfg.IGDB.BatchSize)
}

func TestLoadFromEnvPrefersOwnPrefix(t *testing.T) {
	t.Setenv("IGDBCOVERS_CLIENT_ID", "own")
	t.Setenv("TWITCH_CLIENT_ID", "twitch")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, "own", cfg.IGDB.ClientID)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("IGDBCOVERS_MIN_INTERVAL", "soon")
	assert.Error(t, DefaultConfig().LoadFromEnv())

	t.Setenv("IGDBCOVERS_MIN_INTERVAL", "")
	t.Setenv("IGDBCOVERS_BATCH_SIZE", "many")
	assert.Error(t, DefaultConfig().LoadFromEnv())
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igdbcovers.yaml")
	content := `
igdb:
  client_id: file-id
  client_secret: file-secret
  batch_size: 250
rate_limit:
  min_interval: 500ms
  cooldown: 2m
cache:
  directory: /data/covers
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-id", cfg.IGDB.ClientID)
	assert.Equal(t, 250, cfg.IGDB.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.RateLimit.MinInterval)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Cooldown)
	assert.Equal(t, "/data/covers", cfg.Cache.Directory)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Untouched sections keep their defaults
	assert.Equal(t, "igdb_progress.json", cfg.Progress.File)
}

func TestLoadFromFileSettingsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"theme": "dark", "igdb": {"client_id": "json-id", "client_secret": "json-secret"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "json-id", cfg.IGDB.ClientID)
	assert.Equal(t, "json-secret", cfg.IGDB.ClientSecret)
	assert.Equal(t, "https://api.igdb.com/v4", cfg.IGDB.BaseURL)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("igdb: [unclosed"), 0644))
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"batch too large", func(c *Config) { c.IGDB.BatchSize = 501 }, "batch size"},
		{"batch zero", func(c *Config) { c.IGDB.BatchSize = 0 }, "batch size"},
		{"no base url", func(c *Config) { c.IGDB.BaseURL = "" }, "base URL"},
		{"negative interval", func(c *Config) { c.RateLimit.MinInterval = -time.Second }, "min interval"},
		{"negative retries", func(c *Config) { c.RateLimit.MaxRetries = -1 }, "max retries"},
		{"no cache dir", func(c *Config) { c.Cache.Directory = "" }, "cache directory"},
		{"no progress file", func(c *Config) { c.Progress.File = "" }, "progress file"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Directory = ""
	cfg.Progress.File = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache directory")
	assert.Contains(t, err.Error(), "progress file")
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"cache-dir":     "/flags/covers",
		"progress-file": "",
		"log-level":     "error",
		"metrics-addr":  ":9090",
		"unrelated":     42,
	})

	assert.Equal(t, "/flags/covers", cfg.Cache.Directory)
	assert.Equal(t, "igdb_progress.json", cfg.Progress.File)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.IGDB.ClientID = "saved-id"
	cfg.RateLimit.Cooldown = 90 * time.Second
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg, loaded)
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igdbcovers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  directory: /from/file\nlogging:\n  level: warn\n"), 0644))

	t.Setenv("IGDBCOVERS_CACHE_DIR", "/from/env")

	cfg, err := Load(path, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Cache.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igdbcovers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("igdb:\n  batch_size: 9000\n"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}
