// Package keyer implements cache key derivation.
package keyer

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"sort"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
)

var _ ports.KeyDeriver = (*Deriver)(nil)

// Deriver implements ports.KeyDeriver with a sha256 fingerprint.
//
// Every field is length-prefixed before hashing, so env var "A=B" plus
// command "C" can never collide with env var "A" plus command "B=C".
type Deriver struct{}

// NewDeriver creates a new Deriver.
func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive computes the fingerprint for the given inputs.
func (d *Deriver) Derive(in domain.KeyInputs) domain.Key {
	h := sha256.New()

	writeFlag(h, in.Command.Shell)
	if in.Command.Shell {
		// Two differently-quoted invocations that re-quote to the same shell
		// string hash identically.
		writeField(h, []byte(in.Command.ShellString()))
	} else {
		writeLen(h, len(in.Command.Argv))
		for _, arg := range in.Command.Argv {
			writeField(h, []byte(arg))
		}
	}

	names := make([]string, 0, len(in.Env))
	for name := range in.Env {
		names = append(names, name)
	}
	sort.Strings(names)
	writeLen(h, len(names))
	for _, name := range names {
		writeField(h, []byte(name))
		writeField(h, []byte(in.Env[name]))
	}

	writeFlag(h, in.StdinIncluded)
	if in.StdinIncluded {
		writeField(h, in.Stdin)
	}

	writeFlag(h, in.CustomKey != nil)
	if in.CustomKey != nil {
		writeField(h, in.CustomKey)
	}

	return domain.KeyFromSum([sha256.Size]byte(h.Sum(nil)))
}

func writeField(h hash.Hash, b []byte) {
	writeLen(h, len(b))
	_, _ = h.Write(b)
}

func writeLen(h hash.Hash, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	_, _ = h.Write(buf[:])
}

func writeFlag(h hash.Hash, b bool) {
	if b {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
