package telemetry

import (
	"context"

	"go.trai.ch/exordium/internal/core/ports"
)

// NoOpTelemetry is a no-op implementation of ports.Telemetry.
type NoOpTelemetry struct{}

// NewNoOp creates a new NoOpTelemetry.
func NewNoOp() *NoOpTelemetry {
	return &NoOpTelemetry{}
}

// Record returns a no-op vertex.
func (t *NoOpTelemetry) Record(_ context.Context, _ string) ports.Vertex {
	return &NoOpVertex{}
}

// Close does nothing.
func (t *NoOpTelemetry) Close() error { return nil }

// NoOpVertex is a no-op implementation of ports.Vertex.
type NoOpVertex struct{}

// Complete does nothing.
func (v *NoOpVertex) Complete(_ error) {}

// Cached does nothing.
func (v *NoOpVertex) Cached() {}
