package domain

import "go.trai.ch/zerr"

var (
	// ErrDuplicateDependency is returned when a manifest declares the same top-level name twice.
	ErrDuplicateDependency = zerr.New("duplicate dependency")

	// ErrMissingDependency is returned when an entry references a dependency that doesn't exist in the manifest.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrResolutionFailed is returned when a package name or version constraint
	// cannot be satisfied by the registry. The offending package name is
	// attached as metadata.
	ErrResolutionFailed = zerr.New("resolution failed")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidManifest is returned when a manifest line cannot be parsed.
	ErrInvalidManifest = zerr.New("invalid manifest")

	// ErrDigestMismatch is returned when a downloaded artifact does not match
	// the digest advertised by the registry.
	ErrDigestMismatch = zerr.New("artifact digest mismatch")

	// ErrInstallFailed is returned when the install run finished with failures.
	ErrInstallFailed = zerr.New("install failed")
)
