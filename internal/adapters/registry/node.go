package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/internal/adapters/config"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
)

const (
	// ClientNodeID identifies the registry client Graft node.
	ClientNodeID graft.ID = "adapter.registry"
	// ResolverNodeID identifies the version resolver Graft node.
	ResolverNodeID graft.ID = "adapter.version_resolver"
)

func init() {
	graft.Register(graft.Node[ports.Registry]{
		ID:        ClientNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Registry, error) {
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewClient(settings, log)
		},
	})

	graft.Register(graft.Node[ports.VersionResolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{ClientNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.VersionResolver, error) {
			client, err := graft.Dep[ports.Registry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(client, log), nil
		},
	})
}
