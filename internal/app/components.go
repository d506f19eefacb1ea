package app

import (
	"go.trai.ch/runcached/internal/adapters/config"
	"go.trai.ch/runcached/internal/core/ports"
)

// Components contains the initialized application components the CLI layer
// needs access to.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader *config.Loader
}
