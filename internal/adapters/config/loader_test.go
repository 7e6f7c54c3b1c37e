package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
)

func newLoader() *FileConfigLoader {
	return NewLoader(logger.NewWithWriter(io.Discard))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	settings, err := newLoader().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultRegistryURL, settings.RegistryURL)
	assert.Equal(t, "debug", settings.Profile)
	assert.Equal(t, 3, settings.RetryAttempts)
	assert.NotEmpty(t, settings.CacheDir)
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := writeConfig(t, `
cacheDir: /tmp/rsx-cache
profile: release
registry:
  url: https://mirror.example/index
  retryAttempts: 5
  retryBaseDelay: 100ms
`)

	settings, err := newLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/rsx-cache", settings.CacheDir)
	assert.Equal(t, "release", settings.Profile)
	assert.Equal(t, "https://mirror.example/index", settings.RegistryURL)
	assert.Equal(t, 5, settings.RetryAttempts)
	assert.Equal(t, 100*time.Millisecond, settings.RetryBaseDelay)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "profile: release\n")

	settings, err := newLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "release", settings.Profile)
	assert.Equal(t, domain.DefaultRegistryURL, settings.RegistryURL)
	assert.Equal(t, 3, settings.RetryAttempts)
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := writeConfig(t, "profile: superfast\n")

	_, err := newLoader().Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "profile: [unclosed\n")

	_, err := newLoader().Load(path)
	require.Error(t, err)
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	path := writeConfig(t, "profile: release\n")
	t.Setenv(EnvConfigPath, path)

	settings, err := newLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "release", settings.Profile)
}
