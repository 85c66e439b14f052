package domain

import "time"

// Requirement represents a single dependency record from the manifest.
// This is the input representation before resolution.
type Requirement struct {
	// Name is the package name as written in the manifest (e.g., "mutagen").
	Name InternedString

	// Annotation is the raw parenthetical comment, verbatim
	// (e.g., "built on 1.37"). Empty when the entry is a bare name.
	Annotation string

	// MinVersion is the minimum acceptable version extracted from the
	// annotation. Zero when the annotation carries no recognizable version.
	MinVersion Version

	// Requires lists the names of this entry's transitive dependencies
	// (the indented continuation lines below it).
	Requires []InternedString

	// Implicit marks requirements that were never declared on a top-level
	// line and exist only because another entry requires them.
	Implicit bool
}

// ResolvedPackage is a registry entry chosen to satisfy a requirement.
type ResolvedPackage struct {
	// Name is the canonical package name.
	Name InternedString

	// Version is the resolved version string (e.g., "1.37.2").
	Version string

	// URL is the artifact download location.
	URL string

	// Digest is the expected xxhash64 digest of the artifact, as 16 hex digits.
	Digest string

	// Size is the artifact size in bytes, when the registry reports one.
	Size int64
}

// InstallReceipt records a completed installation of one package.
type InstallReceipt struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Digest    string    `json:"digest"`
	StorePath string    `json:"store_path"`
	Size      int64     `json:"size,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
