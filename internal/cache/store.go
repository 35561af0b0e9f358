package cache

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned by Store.Read when no artifact exists for a key.
var ErrNotFound = errors.New("artifact not found")

// Entry records the bookkeeping for one stored artifact. Seq is a
// monotonically increasing insertion counter; eviction orders by
// (Created, Seq) because timestamp resolution may be coarser than the
// insertion rate.
type Entry struct {
	Key     string
	Size    int64
	Created time.Time
	Seq     uint64
}

// Store is a key-addressable byte-artifact store. Write must be atomic:
// a concurrent Read observes either the previous state or the fully
// written artifact, never a partial one.
type Store interface {
	// Read returns the artifact bytes for key, or ErrNotFound.
	Read(key string) ([]byte, error)

	// Write stores data under e.Key, replacing any existing artifact.
	Write(e Entry, data []byte) error

	// Delete removes the entry and its artifact. Deleting an absent key
	// is not an error. The entry is always dropped from the store's
	// bookkeeping even if artifact removal fails.
	Delete(key string) error

	// List returns all entries ordered by creation time, insertion
	// sequence breaking ties.
	List() []Entry

	// Len returns the number of stored entries.
	Len() int

	// Clear removes every entry and artifact.
	Clear() error

	// Close flushes any persistent state.
	Close() error
}

// MemoryStore is an ephemeral Store used when no cache directory is
// configured, and as the deterministic store in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	data    map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		data:    make(map[string][]byte),
	}
}

// Read returns the artifact bytes for key.
func (s *MemoryStore) Read(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores data under e.Key.
func (s *MemoryStore) Write(e Entry, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]byte, len(data))
	copy(owned, data)

	e.Size = int64(len(data))
	s.entries[e.Key] = e
	s.data[e.Key] = owned
	return nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	delete(s.data, key)
	return nil
}

// List returns entries ordered by (Created, Seq).
func (s *MemoryStore) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Clear removes all entries.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	s.data = make(map[string][]byte)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Created.Equal(entries[j].Created) {
			return entries[i].Seq < entries[j].Seq
		}
		return entries[i].Created.Before(entries[j].Created)
	})
}

var _ Store = (*MemoryStore)(nil)
