package ports

import "context"

// Telemetry records per-package progress of an install run.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a new vertex for the named package.
	Record(ctx context.Context, name string) Vertex

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one package's progress within a run.
type Vertex interface {
	// Complete marks the vertex as finished (successfully or with an error).
	Complete(err error)

	// Cached marks the vertex as skipped because the package was already installed.
	Cached()
}
