// Package config provides the configuration loader for rsx.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "RSX_CONFIG"

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	logger ports.Logger
}

// NewLoader creates a new FileConfigLoader.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{logger: logger}
}

// Load reads the configuration file at path, or the default location
// when path is empty. A missing file is not an error: defaults apply.
func (l *FileConfigLoader) Load(path string) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	cacheDir, err := defaultCacheDir()
	if err != nil {
		return settings, err
	}
	settings.CacheDir = cacheDir

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			// No config dir means no config file; defaults are fine.
			return settings, nil
		}
		path = filepath.Join(configDir, "rsx", "config.yaml")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return settings, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}

	applyFile(&settings, &file)

	if settings.Profile != "debug" && settings.Profile != "release" {
		return settings, zerr.With(zerr.New("invalid profile in config"), "profile", settings.Profile)
	}

	l.logger.Debug("loaded configuration from " + path)
	return settings, nil
}

func applyFile(settings *domain.Settings, file *configFile) {
	if file.CacheDir != "" {
		settings.CacheDir = file.CacheDir
	}
	if file.Registry.URL != "" {
		settings.RegistryURL = file.Registry.URL
	}
	if file.Registry.RetryAttempts > 0 {
		settings.RetryAttempts = file.Registry.RetryAttempts
	}
	if file.Registry.RetryBaseDelay != "" {
		if d, err := time.ParseDuration(file.Registry.RetryBaseDelay); err == nil && d > 0 {
			settings.RetryBaseDelay = d
		}
	}
	if file.Profile != "" {
		settings.Profile = file.Profile
	}
}

func defaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", zerr.Wrap(err, "cannot resolve user cache directory")
	}
	return filepath.Join(base, "rsx"), nil
}
