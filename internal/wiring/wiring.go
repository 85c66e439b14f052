// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/exordium/internal/adapters/fetch"
	_ "go.trai.ch/exordium/internal/adapters/index"
	_ "go.trai.ch/exordium/internal/adapters/logger"
	_ "go.trai.ch/exordium/internal/adapters/manifest"
	_ "go.trai.ch/exordium/internal/adapters/state"
	_ "go.trai.ch/exordium/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/exordium/internal/app"
	_ "go.trai.ch/exordium/internal/engine/scheduler"
)
