// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/runcached/internal/adapters/cas"
	_ "go.trai.ch/runcached/internal/adapters/config"
	_ "go.trai.ch/runcached/internal/adapters/env"
	_ "go.trai.ch/runcached/internal/adapters/keyer"
	_ "go.trai.ch/runcached/internal/adapters/logger"
	_ "go.trai.ch/runcached/internal/adapters/shell"
	_ "go.trai.ch/runcached/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/runcached/internal/app"
	_ "go.trai.ch/runcached/internal/engine/runner"
)
