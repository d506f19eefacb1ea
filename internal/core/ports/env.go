package ports

import "go.trai.ch/runcached/internal/core/domain"

// EnvResolver computes the three-way env var selection feeding both key
// derivation and the child process environment.
//
//go:generate go run go.uber.org/mock/mockgen -source=env.go -destination=mocks/mock_env.go -package=mocks
type EnvResolver interface {
	// Resolve applies the selection against a snapshot of the current process
	// environment ("KEY=VALUE" form). The ambient environment is never
	// mutated; wildcards in the include set expand against the snapshot at
	// resolution time.
	Resolve(sel domain.EnvSelection, current []string) (*domain.ResolvedEnv, error)
}
