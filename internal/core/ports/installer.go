package ports

import (
	"context"

	"go.trai.ch/exordium/internal/core/domain"
)

// Installer handles the fetching and placement of resolved artifacts.
//
//go:generate go run go.uber.org/mock/mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	// Install ensures the package artifact is present and verified in the
	// local store. Returns the absolute store path of the artifact.
	Install(ctx context.Context, pkg domain.ResolvedPackage) (storePath string, err error)
}
