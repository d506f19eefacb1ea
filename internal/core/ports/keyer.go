package ports

import "go.trai.ch/runcached/internal/core/domain"

// KeyDeriver turns invocation inputs into a stable fingerprint.
//
// Derivation is deterministic: identical inputs produce identical keys across
// process restarts. Serialization is order-independent for the env map and
// unambiguously delimited, so adjacent fields cannot collide.
//
//go:generate go run go.uber.org/mock/mockgen -source=keyer.go -destination=mocks/mock_keyer.go -package=mocks
type KeyDeriver interface {
	Derive(in domain.KeyInputs) domain.Key
}
