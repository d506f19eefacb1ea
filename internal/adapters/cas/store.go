// Package cas implements the content-addressed result store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ResultStore = (*Store)(nil)

// Store implements ports.ResultStore using a file-per-key strategy: one JSON
// document per fingerprint under <cacheDir>/store. Entries are published by
// writing to a temp file and renaming it into place, so a concurrent reader
// sees either the prior entry or the complete new one, never a torn write.
type Store struct {
	now func() time.Time
}

// NewStore creates a new ResultStore.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Lookup retrieves the fresh entry for the key, treating stale, unreadable
// and corrupt entries as described by ports.ResultStore.
func (s *Store) Lookup(cacheDir string, key domain.Key) (*domain.Entry, error) {
	filename := s.entryPath(cacheDir, key)
	//nolint:gosec // Path is the cache dir plus a hex fingerprint
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(domain.ErrStoreReadFailed, zerr.With(err, "path", filename))
	}

	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errors.Join(domain.ErrStoreUnmarshalFailed, zerr.With(err, "path", filename))
	}

	if entry.Key != key.String() || entry.Checksum != entry.PayloadChecksum() {
		return nil, errors.Join(domain.ErrEntryCorrupt, zerr.With(zerr.New("checksum mismatch"), "path", filename))
	}

	if !entry.Fresh(s.now()) {
		// Stale is identical to absent. Reclaiming the file is best effort;
		// correctness only needs the miss.
		_ = os.Remove(filename)
		return nil, nil
	}

	return &entry, nil
}

// Put atomically publishes the entry under the key, stamping its checksum.
func (s *Store) Put(cacheDir string, key domain.Key, entry domain.Entry) error {
	entry.Key = key.String()
	entry.Checksum = entry.PayloadChecksum()

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrStoreMarshalFailed, err)
	}

	dir := domain.StorePath(cacheDir)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return errors.Join(domain.ErrStoreCreateFailed, zerr.With(err, "dir", dir))
	}

	tmp, err := os.CreateTemp(dir, key.String()+".*.tmp")
	if err != nil {
		return errors.Join(domain.ErrStoreWriteFailed, zerr.With(err, "dir", dir))
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(domain.ErrStoreWriteFailed, zerr.With(err, "path", tmp.Name()))
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return errors.Join(domain.ErrStoreWriteFailed, zerr.With(err, "path", tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(domain.ErrStoreWriteFailed, zerr.With(err, "path", tmp.Name()))
	}

	// Rename is the publish point: concurrent writers race benignly, last
	// rename wins wholesale.
	filename := s.entryPath(cacheDir, key)
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return errors.Join(domain.ErrStoreWriteFailed, zerr.With(err, "path", filename))
	}

	return nil
}

// Sweep removes stale entries, or every entry when all is set.
func (s *Store) Sweep(cacheDir string, all bool) (int, error) {
	dir := domain.StorePath(cacheDir)
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, errors.Join(domain.ErrStoreReadFailed, zerr.With(err, "dir", dir))
	}

	now := s.now()
	removed := 0
	for _, dirent := range dirents {
		name := dirent.Name()
		if !strings.HasSuffix(name, ".json") {
			// Leftover temp files from interrupted writes.
			if all && strings.HasSuffix(name, ".tmp") {
				_ = os.Remove(filepath.Join(dir, name))
			}
			continue
		}

		path := filepath.Join(dir, name)
		if all || s.stale(path, now) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// stale reports whether the entry at path is expired. Entries that cannot be
// parsed are fair game for the sweep too.
func (s *Store) stale(path string, now time.Time) bool {
	//nolint:gosec // Path comes from walking our own store dir
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return true
	}
	return !entry.Fresh(now)
}

func (s *Store) entryPath(cacheDir string, key domain.Key) string {
	return filepath.Join(domain.StorePath(cacheDir), key.String()+".json")
}
