package index

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exordium/internal/core/ports"
)

// NodeID is the unique identifier for the registry client Graft node.
const NodeID graft.ID = "adapter.index"

func init() {
	graft.Register(graft.Node[ports.Resolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Resolver, error) {
			return NewClient()
		},
	})
}
