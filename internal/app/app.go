// Package app implements the application layer for exordium.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/exordium/internal/adapters/index"    //nolint:depguard // Registry defaults live with the index adapter
	"go.trai.ch/exordium/internal/adapters/lockfile" //nolint:depguard // The lockfile is written by the app layer
	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/exordium/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader    ports.ManifestLoader
	resolver  ports.Resolver
	scheduler *scheduler.Scheduler
	store     ports.ReceiptStore
	verifier  ports.Verifier
	logger    ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ManifestLoader,
	resolver ports.Resolver,
	sched *scheduler.Scheduler,
	store ports.ReceiptStore,
	verifier ports.Verifier,
	logger ports.Logger,
) *App {
	return &App{
		loader:    loader,
		resolver:  resolver,
		scheduler: sched,
		store:     store,
		verifier:  verifier,
		logger:    logger,
	}
}

// Install loads the manifest, resolves every requirement against the
// registry, installs the packages in dependency order and writes the
// lockfile next to the manifest.
func (a *App) Install(ctx context.Context, manifestPath string, parallelism int) error {
	m, err := a.loader.Load(manifestPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}

	resolved, err := a.resolveAll(ctx, m)
	if err != nil {
		return err
	}

	if err := a.scheduler.Run(ctx, m, resolved, parallelism); err != nil {
		return errors.Join(domain.ErrInstallFailed, err)
	}

	installed, skipped := 0, 0
	for _, status := range a.scheduler.Statuses() {
		switch status {
		case scheduler.StatusInstalled:
			installed++
		case scheduler.StatusSkipped:
			skipped++
		}
	}
	a.logger.Info(fmt.Sprintf("installed %d packages (%d already current)", installed, skipped))

	lockPath := filepath.Join(filepath.Dir(manifestPath), lockfile.DefaultName)
	lock := domain.Lockfile{
		Version:  lockfile.FormatVersion,
		Registry: registryURL(),
		Packages: resolved,
	}
	if err := lockfile.Write(lockPath, lock); err != nil {
		return err
	}
	a.logger.Info("wrote " + lockPath)

	return nil
}

// Plan resolves the manifest and prints the would-be install set without
// downloading anything or touching the receipt store.
func (a *App) Plan(ctx context.Context, manifestPath string, w io.Writer) error {
	m, err := a.loader.Load(manifestPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}

	resolved, err := a.resolveAll(ctx, m)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-32s %-12s %s\n", "PACKAGE", "VERSION", "DIGEST")
	for req := range m.Walk() {
		pkg := resolved[req.Name.String()]
		note := ""
		if req.Implicit {
			note = "  (dependency)"
		}
		fmt.Fprintf(w, "%-32s %-12s %s%s\n", pkg.Name.String(), pkg.Version, pkg.Digest, note)
	}

	return nil
}

// Verify re-checks every install receipt against the store contents.
func (a *App) Verify(ctx context.Context) error {
	receipts, err := a.store.All()
	if err != nil {
		return zerr.Wrap(err, "failed to list receipts")
	}

	var tampered []string
	for _, receipt := range receipts {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ok, err := a.verifier.Verify(receipt)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to verify package"), "package", receipt.Name)
		}
		if !ok {
			a.logger.Warn("digest mismatch for " + receipt.Name)
			tampered = append(tampered, receipt.Name)
		}
	}

	if len(tampered) > 0 {
		return zerr.With(domain.ErrDigestMismatch, "packages", strings.Join(tampered, ", "))
	}

	a.logger.Info(fmt.Sprintf("verified %d packages", len(receipts)))
	return nil
}

func registryURL() string {
	if url := os.Getenv(index.EnvRegistry); url != "" {
		return url
	}
	return index.DefaultBaseURL
}
