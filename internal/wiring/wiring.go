// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/rsx/internal/adapters/cache"
	_ "go.trai.ch/rsx/internal/adapters/cargo"
	_ "go.trai.ch/rsx/internal/adapters/config"
	_ "go.trai.ch/rsx/internal/adapters/logger"
	_ "go.trai.ch/rsx/internal/adapters/parser"
	_ "go.trai.ch/rsx/internal/adapters/registry"
	_ "go.trai.ch/rsx/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/rsx/internal/app"
	_ "go.trai.ch/rsx/internal/engine/transform"
)
