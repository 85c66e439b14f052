// Package telemetry provides the Progrock implementation of install progress recording.
package telemetry

import (
	"context"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/exordium/internal/core/ports"
)

// Recorder implements ports.Telemetry using the vito/progrock library.
// Each package install becomes a vertex on the tape.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() ports.Telemetry {
	tape := progrock.NewTape()
	return NewRecorder(tape)
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	rec := progrock.NewRecorder(w)
	return &Recorder{
		w:   w,
		rec: rec,
	}
}

// Record starts recording a new vertex for the named package.
func (r *Recorder) Record(_ context.Context, name string) ports.Vertex {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return &Vertex{vertex: v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
