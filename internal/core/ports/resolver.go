package ports

import (
	"context"

	"go.trai.ch/exordium/internal/core/domain"
)

// Resolver resolves a requirement against the package registry.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type Resolver interface {
	// Resolve picks the best available version of the named package that
	// satisfies the minimum version. A zero minimum accepts any version.
	// Returns domain.ErrResolutionFailed, carrying the package name, when
	// the package is unknown or no version satisfies the constraint.
	Resolve(ctx context.Context, name string, min domain.Version) (domain.ResolvedPackage, error)
}
