package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv(EnvNatsURL, "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv(EnvNatsURL, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.SetAPIKey("gemini", "secret")
	cfg.Store = StoreConfig{Driver: "postgres", DSN: "postgres://localhost/vulnrecord", Capacity: 16}
	cfg.Nats = NatsConfig{URL: "nats://localhost:4222", Subject: "scans"}
	require.NoError(t, SaveTo(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, "secret", loaded.GetAPIKey("gemini"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDSN, "postgres://db/reports")
	t.Setenv(EnvNatsURL, "nats://bus:4222")
	t.Setenv(EnvGoogleKey, "from-env")

	saved, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), saved)

	cfg := saved.WithEnv()
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://db/reports", cfg.Store.DSN)
	assert.Equal(t, "nats://bus:4222", cfg.Nats.URL)
	assert.Equal(t, "from-env", cfg.GetAPIKey("gemini"))
	assert.Empty(t, cfg.GetAPIKey("other"))

	cfg.SetAPIKey("gemini", "runtime-only")
	assert.Equal(t, Default(), saved)
}

func TestSaveDoesNotPersistEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(EnvDSN, "postgres://admin:hunter2@db/reports")
	t.Setenv(EnvNatsURL, "nats://bus:4222")

	runtime, err := LoadRuntime()
	require.NoError(t, err)
	assert.Equal(t, "postgres://admin:hunter2@db/reports", runtime.Store.DSN)

	// What config set-key does.
	cfg, err := LoadConfig()
	require.NoError(t, err)
	cfg.SetAPIKey("gemini", "secret")
	require.NoError(t, SaveConfig(cfg))

	path, err := GetConfigPath()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.NotContains(t, string(data), "nats://bus:4222")
	assert.Contains(t, string(data), "secret")
}

func TestConfigPathOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0600))
	_, err := LoadFrom(path)
	assert.Error(t, err)
}
