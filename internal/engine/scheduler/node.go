package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exordium/internal/adapters/fetch"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/exordium/internal/adapters/state"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/exordium/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/exordium/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fetch.InstallerNodeID,
			state.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			installer, err := graft.Dep[ports.Installer](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ReceiptStore](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(installer, store, tel), nil
		},
	})
}
