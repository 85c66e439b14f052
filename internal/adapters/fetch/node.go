package fetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/exordium/internal/adapters/logger"
	"go.trai.ch/exordium/internal/core/ports"
)

const (
	// InstallerNodeID is the unique identifier for the installer Graft node.
	InstallerNodeID graft.ID = "adapter.fetch.installer"
	// VerifierNodeID is the unique identifier for the verifier Graft node.
	VerifierNodeID graft.ID = "adapter.fetch.verifier"
)

func init() {
	graft.Register(graft.Node[ports.Installer]{
		ID:        InstallerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Installer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewInstaller(log)
		},
	})

	graft.Register(graft.Node[ports.Verifier]{
		ID:        VerifierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Verifier, error) {
			return NewVerifier(), nil
		},
	})
}
