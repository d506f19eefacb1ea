// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/runcached/internal/core/domain"
)

// Executor runs the external command once and captures its streams.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the invocation to completion, blocking until the child
	// exits, and returns its captured stdout, stderr and exit code.
	//
	// A non-zero exit is a normal outcome, not an error. An error is returned
	// only when the child could not be started at all; it wraps
	// domain.ErrExecStartFailed.
	Execute(ctx context.Context, inv domain.Invocation) (*domain.Result, error)
}
