package cache

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/internal/adapters/config"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
)

// NodeID identifies the build cache Graft node.
const NodeID graft.ID = "adapter.build_cache"

func init() {
	graft.Register(graft.Node[ports.BuildCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.BuildCache, error) {
			settings, err := graft.Dep[domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			store, err := NewStore(filepath.Join(settings.CacheDir, "state.json"))
			if err != nil {
				return nil, err
			}
			return New(settings.CacheDir, store, log), nil
		},
	})
}
