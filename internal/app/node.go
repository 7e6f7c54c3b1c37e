package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/internal/adapters/cache"  //nolint:depguard // Wired in app layer
	"go.trai.ch/rsx/internal/adapters/cargo"  //nolint:depguard // Wired in app layer
	"go.trai.ch/rsx/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/rsx/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/rsx/internal/adapters/parser" //nolint:depguard // Wired in app layer
	"go.trai.ch/rsx/internal/adapters/registry"
	"go.trai.ch/rsx/internal/adapters/shell"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/rsx/internal/engine/transform"
)

const (
	// NodeID is the unique identifier for the main App Graft node.
	NodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the application with the pieces the CLI layer
// needs direct access to.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings domain.Settings
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			parser.ClassifierNodeID,
			parser.InferencerNodeID,
			parser.MetadataNodeID,
			registry.ResolverNodeID,
			transform.NodeID,
			cache.NodeID,
			cargo.NodeID,
			shell.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			NodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: application, Logger: log, Settings: settings}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[domain.Settings](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	classifier, err := graft.Dep[ports.Classifier](ctx)
	if err != nil {
		return nil, err
	}
	inferencer, err := graft.Dep[ports.DependencyInferencer](ctx)
	if err != nil {
		return nil, err
	}
	metadata, err := graft.Dep[ports.MetadataExtractor](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.VersionResolver](ctx)
	if err != nil {
		return nil, err
	}
	transformer, err := graft.Dep[*transform.Transformer](ctx)
	if err != nil {
		return nil, err
	}
	buildCache, err := graft.Dep[ports.BuildCache](ctx)
	if err != nil {
		return nil, err
	}
	toolchain, err := graft.Dep[ports.Toolchain](ctx)
	if err != nil {
		return nil, err
	}
	runner, err := graft.Dep[ports.Runner](ctx)
	if err != nil {
		return nil, err
	}

	return New(settings, log, classifier, inferencer, metadata, resolver,
		transformer, buildCache, toolchain, runner), nil
}
