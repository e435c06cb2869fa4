// Package cache persists per-file analyzer findings between runs. Entries
// are keyed by relative path plus a content hash, so any file change misses
// the cache and gets re-scanned.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

// Version is bumped whenever the stored format or the rules feeding it
// change. A version mismatch discards the whole store.
const Version = 1

// DefaultFileName is the store location relative to the scanned project root.
const DefaultFileName = ".repodoctor.cache"

type entry struct {
	Issues []issue.Issue `msgpack:"issues"`
}

type fileFormat struct {
	Version int              `msgpack:"version"`
	Entries map[string]entry `msgpack:"entries"`
}

// Store is an in-memory issue cache with msgpack persistence. All methods
// are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]entry
	touched map[string]bool
	dirty   bool
}

// Key builds the cache key for a file's content.
func Key(rel string, content []byte) string {
	sum := sha256.Sum256(content)
	return rel + "@" + hex.EncodeToString(sum[:])
}

// Load reads the store at path. A missing file, a version mismatch, or a
// corrupt payload all yield an empty store; the cache is advisory and never
// fails a scan.
func Load(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]entry),
		touched: make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var ff fileFormat
	if err := msgpack.Unmarshal(data, &ff); err != nil || ff.Version != Version {
		return s
	}
	if ff.Entries != nil {
		s.entries = ff.Entries
	}
	return s
}

// Get returns the cached issues for key. The boolean distinguishes a cached
// empty result from a miss.
func (s *Store) Get(key string) ([]issue.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	s.touched[key] = true
	out := make([]issue.Issue, len(e.Issues))
	copy(out, e.Issues)
	return out, true
}

// Put records the issues found for key.
func (s *Store) Put(key string, issues []issue.Issue) {
	stored := make([]issue.Issue, len(issues))
	copy(stored, issues)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{Issues: stored}
	s.touched[key] = true
	s.dirty = true
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Save writes the store back to disk if anything changed since Load.
// Entries never looked up or written during this run belong to stale
// (path, content) pairs and are dropped, so edits do not grow the file
// without bound.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	for key := range s.entries {
		if !s.touched[key] {
			delete(s.entries, key)
		}
	}
	data, err := msgpack.Marshal(fileFormat{Version: Version, Entries: s.entries})
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}
