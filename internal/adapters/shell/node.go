package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/ports"
)

// NodeID identifies the script runner Graft node.
const NodeID graft.ID = "adapter.runner"

func init() {
	graft.Register(graft.Node[ports.Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Runner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(log), nil
		},
	})
}
