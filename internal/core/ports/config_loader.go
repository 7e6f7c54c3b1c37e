package ports

import "go.trai.ch/rsx/internal/core/domain"

// ConfigLoader loads the optional user configuration file.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load returns the effective settings. A missing config file is not
	// an error; defaults apply.
	Load(path string) (domain.Settings, error)
}
