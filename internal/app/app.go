// Package app implements the application layer for runcached.
package app

import (
	"context"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/runcached/internal/engine/runner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	runner *runner.Runner
	store  ports.ResultStore
	tracer ports.Tracer
}

// New creates a new App instance.
func New(r *runner.Runner, store ports.ResultStore, tracer ports.Tracer) *App {
	return &App{
		runner: r,
		store:  store,
		tracer: tracer,
	}
}

// Run executes one memoized invocation and returns its result.
func (a *App) Run(ctx context.Context, req domain.RunRequest) (*domain.Result, error) {
	res, err := a.runner.Run(ctx, req)
	if err != nil {
		return nil, zerr.Wrap(err, "invocation failed")
	}
	return res, nil
}

// Clean sweeps the store, removing stale entries or everything when all is
// set, and reports how many entries were removed.
func (a *App) Clean(cacheDir string, all bool) (int, error) {
	removed, err := a.store.Sweep(cacheDir, all)
	if err != nil {
		return 0, zerr.Wrap(err, "cache sweep failed")
	}
	return removed, nil
}

// Close flushes the telemetry session.
func (a *App) Close() error {
	return a.tracer.Close()
}
