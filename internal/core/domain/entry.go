package domain

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Entry is a memoized command result.
//
// Entries are immutable once published: a re-run with the same key replaces
// the entry wholesale rather than mutating it in place.
type Entry struct {
	Key       string        `json:"key"`
	Stdout    []byte        `json:"stdout,omitzero"`
	Stderr    []byte        `json:"stderr,omitzero"`
	ExitCode  int           `json:"exit_code"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl,omitzero"`
	Checksum  uint64        `json:"checksum,omitzero"`
}

// Fresh reports whether the entry is still within its TTL at the given time.
// An entry aged exactly TTL is still fresh; anything older is stale.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Sub(e.CreatedAt) <= e.TTL
}

// PayloadChecksum computes the xxhash checksum over the entry payload.
// A mismatch between this and Checksum marks the entry as torn or corrupt.
func (e *Entry) PayloadChecksum() uint64 {
	h := xxhash.New()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(len(e.Stdout)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write(e.Stdout)

	binary.LittleEndian.PutUint64(buf[:], uint64(len(e.Stderr)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write(e.Stderr)

	binary.LittleEndian.PutUint64(buf[:], uint64(int64(e.ExitCode)))
	_, _ = h.Write(buf[:])

	return h.Sum64()
}

// Result returns the replayable view of the entry.
func (e *Entry) Result() *Result {
	return &Result{
		Stdout:   e.Stdout,
		Stderr:   e.Stderr,
		ExitCode: e.ExitCode,
		Cached:   true,
	}
}

// Result is the observable outcome of one invocation, cached or fresh.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Cached   bool
}
