package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/exordium/internal/core/domain"
)

// resolveParallelism caps concurrent registry lookups.
const resolveParallelism = 8

// resolveAll resolves every requirement of the manifest concurrently. The
// first resolution failure cancels the remaining lookups and is returned
// as-is, so it still carries the offending package name.
func (a *App) resolveAll(ctx context.Context, m *domain.Manifest) (map[string]domain.ResolvedPackage, error) {
	var (
		mu       sync.Mutex
		resolved = make(map[string]domain.ResolvedPackage, m.Len())
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveParallelism)

	for req := range m.Walk() {
		g.Go(func() error {
			pkg, err := a.resolver.Resolve(ctx, req.Name.String(), req.MinVersion)
			if err != nil {
				return err
			}

			mu.Lock()
			resolved[req.Name.String()] = pkg
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return resolved, nil
}
