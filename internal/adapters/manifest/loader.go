package manifest

import (
	"os"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestLoader = (*FileLoader)(nil)

// FileLoader implements ports.ManifestLoader for manifest files on disk.
type FileLoader struct {
	logger ports.Logger
}

// NewFileLoader creates a new FileLoader.
func NewFileLoader(logger ports.Logger) *FileLoader {
	return &FileLoader{logger: logger}
}

// Load reads the manifest at the given path.
func (l *FileLoader) Load(path string) (*domain.Manifest, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open manifest"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	m, err := Parse(f)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.logger.Info("manifest loaded: " + path)
	return m, nil
}
