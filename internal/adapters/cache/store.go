// Package cache implements the two-tier content-addressed build cache.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EntryStore = (*Store)(nil)

// Store persists cache entry metadata in a flat JSON file. The file is
// shared between concurrent processes, so entries are never cached in
// memory: every read observes the state on disk, and every write
// re-reads the file and merges the single changed entry before
// publishing. A snapshot held across another process's publish would
// miss its entries and clobber them on the next save.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates an EntryStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{path: filepath.Clean(path)}
	// Fail fast on unreadable or corrupt state instead of at first use.
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) read() (map[domain.Fingerprint]domain.CacheEntry, error) {
	entries := make(map[domain.Fingerprint]domain.CacheEntry)

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, zerr.Wrap(err, "failed to read cache state")
	}

	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal cache state")
	}

	return entries, nil
}

func (s *Store) write(entries map[domain.Fingerprint]domain.CacheEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache state")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for cache state")
	}

	// Write-to-temp-then-rename so a concurrent reader never sees a
	// truncated state file.
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp state file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to write cache state")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to close temp state file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to publish cache state")
	}

	return nil
}

// Get retrieves the entry for a fingerprint. Returns nil, nil if not found.
func (s *Store) Get(fp domain.Fingerprint) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	entry, ok := entries[fp]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Put stores the entry, preserving entries published by other
// processes since the last read.
func (s *Store) Put(entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	entries[entry.Fingerprint] = entry
	return s.write(entries)
}

// Remove drops the entry for a fingerprint if present.
func (s *Store) Remove(fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := entries[fp]; !ok {
		return nil
	}
	delete(entries, fp)
	return s.write(entries)
}
