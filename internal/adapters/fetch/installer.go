// Package fetch implements artifact acquisition into the local store.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// EnvHome overrides the exordium home directory (store and receipts).
	EnvHome = "EXORDIUM_HOME"

	downloadTimeout = 10 * time.Minute

	dirPerm  = 0o750
	filePerm = 0o600
)

var _ ports.Installer = (*Installer)(nil)

// Installer implements ports.Installer by downloading artifacts into a
// content-addressed store directory. An artifact lives at
// <store>/<name>-<version>-<digest>, so a verified entry never needs to
// be downloaded again.
type Installer struct {
	storeDir string
	http     *http.Client
	logger   ports.Logger
}

// NewInstaller creates a new Installer rooted at the default store
// directory (under EXORDIUM_HOME, or ~/.exordium).
func NewInstaller(logger ports.Logger) (*Installer, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}
	return newInstallerWithDir(filepath.Join(home, "store"), logger)
}

// Home returns the exordium home directory.
func Home() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", zerr.Wrap(err, "failed to determine home directory")
	}
	return filepath.Join(userHome, ".exordium"), nil
}

func newInstallerWithDir(storeDir string, logger ports.Logger) (*Installer, error) {
	if err := os.MkdirAll(storeDir, dirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create store directory")
	}
	return &Installer{
		storeDir: storeDir,
		http:     &http.Client{Timeout: downloadTimeout},
		logger:   logger,
	}, nil
}

// Install downloads the package artifact, verifies its digest and places it
// in the store. Returns the absolute store path. An existing store entry
// that still matches its digest is reused without a download.
func (i *Installer) Install(ctx context.Context, pkg domain.ResolvedPackage) (string, error) {
	dest := i.storePath(pkg)

	if ok, err := i.reusable(dest, pkg.Digest); err != nil {
		return "", err
	} else if ok {
		i.logger.Info("store hit: " + filepath.Base(dest))
		return dest, nil
	}

	digest, err := i.download(ctx, pkg, dest)
	if err != nil {
		return "", err
	}

	if pkg.Digest != "" && digest != pkg.Digest {
		// Remove the rejected artifact so a retry starts clean.
		_ = os.Remove(dest)
		mismatch := zerr.With(domain.ErrDigestMismatch, "package", pkg.Name.String())
		mismatch = zerr.With(mismatch, "expected", pkg.Digest)
		return "", zerr.With(mismatch, "actual", digest)
	}

	i.logger.Info("installed " + pkg.Name.String() + " " + pkg.Version)
	return dest, nil
}

func (i *Installer) storePath(pkg domain.ResolvedPackage) string {
	digest := pkg.Digest
	if digest == "" {
		digest = "unverified"
	}
	return filepath.Join(i.storeDir, fmt.Sprintf("%s-%s-%s", pkg.Name.String(), pkg.Version, digest))
}

// reusable reports whether an existing store entry matches the expected digest.
func (i *Installer) reusable(dest, expected string) (bool, error) {
	if _, err := os.Stat(dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.Wrap(err, "failed to stat store entry")
	}
	if expected == "" {
		return true, nil
	}
	digest, err := FileDigest(dest)
	if err != nil {
		return false, err
	}
	return digest == expected, nil
}

// download streams the artifact to dest, hashing as it goes, and returns the
// computed digest.
func (i *Installer) download(ctx context.Context, pkg domain.ResolvedPackage, dest string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pkg.URL, nil)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to build download request"), "package", pkg.Name.String())
	}

	resp, err := i.http.Do(req)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "download failed"), "package", pkg.Name.String())
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode != http.StatusOK {
		dlErr := zerr.With(zerr.New("unexpected download status"), "package", pkg.Name.String())
		dlErr = zerr.With(dlErr, "url", pkg.URL)
		return "", zerr.With(dlErr, "status", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(i.storeDir, "."+pkg.Name.String()+"-*")
	if err != nil {
		return "", zerr.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Cleanup is best effort; gone after rename

	hasher := xxhash.New()
	if _, err := io.Copy(tmp, io.TeeReader(resp.Body, hasher)); err != nil {
		_ = tmp.Close()
		return "", zerr.With(zerr.Wrap(err, "failed to write artifact"), "package", pkg.Name.String())
	}
	if err := tmp.Close(); err != nil {
		return "", zerr.Wrap(err, "failed to close artifact")
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		return "", zerr.Wrap(err, "failed to set artifact permissions")
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", zerr.Wrap(err, "failed to move artifact into store")
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
