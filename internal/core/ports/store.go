package ports

import "go.trai.ch/runcached/internal/core/domain"

// ResultStore persists and retrieves entries keyed by fingerprint.
//
// Implementations own all synchronization: a concurrent Lookup never observes
// a partially written entry, within or across processes.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResultStore interface {
	// Lookup retrieves the fresh entry for the key from the store rooted at
	// cacheDir. Returns nil, nil on a miss; a stale entry is a miss and may be
	// evicted opportunistically. A read failure is returned as an error
	// wrapping domain.ErrStoreReadFailed; callers fall through to execution.
	Lookup(cacheDir string, key domain.Key) (*domain.Entry, error)

	// Put atomically publishes the entry, replacing any previous entry for
	// the same key wholesale. A failure wraps domain.ErrStoreWriteFailed.
	Put(cacheDir string, key domain.Key, entry domain.Entry) error

	// Sweep removes stale entries, or every entry when all is set, and
	// reports how many were removed.
	Sweep(cacheDir string, all bool) (int, error)
}
