package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeySize is the width of a cache key in bytes.
const KeySize = sha256.Size

// Key is the fixed-width fingerprint identifying a cache entry.
type Key [KeySize]byte

// KeyFromSum converts a sha256 digest into a Key.
func KeyFromSum(sum [sha256.Size]byte) Key {
	return Key(sum)
}

// ParseKey decodes a hex-encoded key.
func ParseKey(s string) (Key, error) {
	var k Key
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != KeySize {
		return k, ErrEntryCorrupt
	}
	copy(k[:], b)
	return k, nil
}

// String returns the hex encoding of the key.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k == Key{}
}
