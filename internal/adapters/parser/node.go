package parser

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/ports"
)

const (
	// ClassifierNodeID identifies the source classifier Graft node.
	ClassifierNodeID graft.ID = "adapter.classifier"
	// InferencerNodeID identifies the dependency inferencer Graft node.
	InferencerNodeID graft.ID = "adapter.inferencer"
	// MetadataNodeID identifies the metadata extractor Graft node.
	MetadataNodeID graft.ID = "adapter.metadata"
)

func init() {
	graft.Register(graft.Node[ports.Classifier]{
		ID:        ClassifierNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Classifier, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewClassifier(log), nil
		},
	})

	graft.Register(graft.Node[ports.DependencyInferencer]{
		ID:        InferencerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.DependencyInferencer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewInferencer(log), nil
		},
	})

	graft.Register(graft.Node[ports.MetadataExtractor]{
		ID:        MetadataNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.MetadataExtractor, error) {
			return NewMetadataExtractor(), nil
		},
	})
}
