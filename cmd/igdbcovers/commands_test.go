package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattThePandah/RA-Tracker/pkg/checkpoint"
	"github.com/MattThePandah/RA-Tracker/pkg/config"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
)

func TestExampleConfigIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igdbcovers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0600))

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500, cfg.IGDB.BatchSize)
	assert.Equal(t, 300*time.Millisecond, cfg.RateLimit.MinInterval)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Cooldown)
	assert.Equal(t, 1, cfg.RateLimit.MaxRetries)
	assert.Equal(t, "igdb_progress.json", cfg.Progress.File)
	assert.False(t, cfg.HasCredentials())
}

func TestConfigInitRefusesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igdbcovers.yaml")
	configFile = path
	t.Cleanup(func() { configFile = "" })

	require.NoError(t, runConfigInit(initCmd, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, exampleConfig, string(data))

	assert.Error(t, runConfigInit(initCmd, nil))
}

func TestMaskConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IGDB.ClientID = "client"
	cfg.IGDB.ClientSecret = "abcdefghijklmnopqrstuvwxyz"

	masked := maskConfig(cfg)
	assert.Equal(t, "abcd...wxyz", masked.IGDB.ClientSecret)
	assert.Equal(t, "client", masked.IGDB.ClientID)
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", cfg.IGDB.ClientSecret)

	cfg.IGDB.ClientSecret = "short"
	assert.Equal(t, "***", maskConfig(cfg).IGDB.ClientSecret)
}

func TestCheckConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Cache.Directory = filepath.Join(dir, "covers")
	cfg.Progress.File = filepath.Join(dir, "state", "progress.json")

	warnings, problems := checkConfig(cfg)
	assert.Len(t, warnings, 1)
	assert.Empty(t, problems)
	assert.DirExists(t, cfg.Cache.Directory)
	assert.DirExists(t, filepath.Join(dir, "state"))

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	cfg.Cache.Directory = filepath.Join(blocker, "covers")
	cfg.IGDB.ClientID = "id"
	cfg.IGDB.ClientSecret = "secret"

	warnings, problems = checkConfig(cfg)
	assert.Empty(t, warnings)
	assert.Len(t, problems, 1)
}

func TestResolveCredentialsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IGDB.ClientID = "id"
	cfg.IGDB.ClientSecret = "secret"

	creds, err := resolveCredentials(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "id", creds.ClientID)
	assert.Equal(t, "secret", creds.ClientSecret)
}

func TestPlatformList(t *testing.T) {
	assert.Equal(t, "PlayStation, PlayStation 2", platformList(models.Platforms[:2]))
	assert.Equal(t, "", platformList(nil))
}

func TestProgressResetNamedPlatform(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	progressFile = path
	prev := logger.GetLogger()
	t.Cleanup(func() {
		progressFile = ""
		logger.SetLogger(prev)
	})

	cp := checkpoint.NewManager(path, logger.NewNopLogger())
	require.NoError(t, cp.Save("PlayStation", 1500, true))
	require.NoError(t, cp.Save("PlayStation 2", 500, false))

	require.NoError(t, runProgressReset(progressResetCmd, []string{"ps2"}))

	assert.Equal(t, checkpoint.Entry{LastOffset: 1500, Completed: true}, cp.Load("PlayStation"))
	assert.Equal(t, checkpoint.Entry{}, cp.Load("PlayStation 2"))

	require.NoError(t, runProgressReset(progressResetCmd, nil))
	assert.False(t, cp.Exists())
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fetch", "auth", "config", "progress"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	// Bare invocation accepts the fetch flags
	for _, flag := range []string{"platforms", "no-resume", "cache-dir", "progress-file", "account", "metrics-addr", "notify"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(flag), "root missing --%s", flag)
		assert.NotNil(t, fetchCmd.Flags().Lookup(flag), "fetch missing --%s", flag)
	}
}
