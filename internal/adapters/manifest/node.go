package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exordium/internal/adapters/logger"
	"go.trai.ch/exordium/internal/core/ports"
)

// NodeID is the unique identifier for the manifest loader Graft node.
const NodeID graft.ID = "adapter.manifest_loader"

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFileLoader(log), nil
		},
	})
}
