// Package lockfile reads and writes the exordium lockfile.
package lockfile

import (
	"os"

	"gopkg.in/yaml.v3"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultName is the lockfile written next to the manifest.
const DefaultName = "exordium.lock"

// FormatVersion is the current lockfile schema version.
const FormatVersion = 1

// fileDTO is the on-disk YAML shape of a lockfile.
type fileDTO struct {
	Version  int                   `yaml:"version"`
	Registry string                `yaml:"registry,omitempty"`
	Packages map[string]packageDTO `yaml:"packages"`
}

type packageDTO struct {
	Version string `yaml:"version"`
	URL     string `yaml:"url,omitempty"`
	Digest  string `yaml:"digest,omitempty"`
	Size    int64  `yaml:"size,omitempty"`
}

// Write serializes the lockfile to the given path.
func Write(path string, lock domain.Lockfile) error {
	dto := fileDTO{
		Version:  lock.Version,
		Registry: lock.Registry,
		Packages: make(map[string]packageDTO, len(lock.Packages)),
	}
	for name, pkg := range lock.Packages {
		dto.Packages[name] = packageDTO{
			Version: pkg.Version,
			URL:     pkg.URL,
			Digest:  pkg.Digest,
			Size:    pkg.Size,
		}
	}

	data, err := yaml.Marshal(dto)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal lockfile")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // Lockfiles are project files
		return zerr.With(zerr.Wrap(err, "failed to write lockfile"), "path", path)
	}
	return nil
}

// Read parses the lockfile at the given path.
func Read(path string) (domain.Lockfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return domain.Lockfile{}, zerr.With(zerr.Wrap(err, "failed to read lockfile"), "path", path)
	}

	var dto fileDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return domain.Lockfile{}, zerr.With(zerr.Wrap(err, "failed to parse lockfile"), "path", path)
	}

	lock := domain.Lockfile{
		Version:  dto.Version,
		Registry: dto.Registry,
		Packages: make(map[string]domain.ResolvedPackage, len(dto.Packages)),
	}
	for name, pkg := range dto.Packages {
		lock.Packages[name] = domain.ResolvedPackage{
			Name:    domain.NewInternedString(name),
			Version: pkg.Version,
			URL:     pkg.URL,
			Digest:  pkg.Digest,
			Size:    pkg.Size,
		}
	}
	return lock, nil
}
