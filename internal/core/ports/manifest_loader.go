// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/exordium/internal/core/domain"

// ManifestLoader defines the interface for loading the requirements manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads the manifest at the given path and returns the validated
	// dependency graph.
	Load(path string) (*domain.Manifest, error)
}
