package state

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/exordium/internal/adapters/fetch"
	"go.trai.ch/exordium/internal/core/ports"
)

// NodeID is the unique identifier for the receipt store Graft node.
const NodeID graft.ID = "adapter.state"

func init() {
	graft.Register(graft.Node[ports.ReceiptStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ReceiptStore, error) {
			home, err := fetch.Home()
			if err != nil {
				return nil, err
			}
			return NewStore(filepath.Join(home, "installed.json"))
		},
	})
}
