package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
)

// NodeID identifies the settings Graft node.
const NodeID graft.ID = "adapter.settings"

func init() {
	graft.Register(graft.Node[domain.Settings]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (domain.Settings, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return domain.Settings{}, err
			}
			return NewLoader(log).Load("")
		},
	})
}
