package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exordium/internal/adapters/fetch"     //nolint:depguard // Wired in app layer
	"go.trai.ch/exordium/internal/adapters/index"     //nolint:depguard // Wired in app layer
	"go.trai.ch/exordium/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/exordium/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/exordium/internal/adapters/state"     //nolint:depguard // Wired in app layer
	"go.trai.ch/exordium/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/exordium/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			index.NodeID,
			scheduler.NodeID,
			state.NodeID,
			fetch.VerifierNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			sched, err := graft.Dep[*scheduler.Scheduler](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ReceiptStore](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, resolver, sched, store, verifier, log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	application, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       application,
		Logger:    log,
		Telemetry: tel,
	}, nil
}
