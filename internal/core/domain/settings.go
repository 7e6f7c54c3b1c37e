package domain

import "time"

// Default registry endpoint: the crates.io sparse index.
const DefaultRegistryURL = "https://index.crates.io"

// Settings holds the effective tool configuration after merging the
// optional config file with built-in defaults and CLI flags.
type Settings struct {
	// CacheDir is the root of both cache tiers.
	CacheDir string

	// RegistryURL is the sparse index base URL.
	RegistryURL string

	// Profile is the default build profile, "debug" or "release".
	Profile string

	// RetryAttempts bounds registry query retries on transient failures.
	RetryAttempts int

	// RetryBaseDelay is the initial backoff delay between retries.
	RetryBaseDelay time.Duration
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		RegistryURL:    DefaultRegistryURL,
		Profile:        "debug",
		RetryAttempts:  3,
		RetryBaseDelay: 300 * time.Millisecond,
	}
}
