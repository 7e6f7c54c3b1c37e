package config

// configFile is the on-disk YAML schema for the optional config file.
type configFile struct {
	CacheDir string         `yaml:"cacheDir"`
	Profile  string         `yaml:"profile"`
	Registry registryConfig `yaml:"registry"`
}

type registryConfig struct {
	URL            string `yaml:"url"`
	RetryAttempts  int    `yaml:"retryAttempts"`
	RetryBaseDelay string `yaml:"retryBaseDelay"`
}
