package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultMaxEntries bounds the store when no explicit limit is configured.
const DefaultMaxEntries = 50

// Clock supplies creation timestamps. Injected so tests can drive eviction
// ordering deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Stats counts cache activity since construction.
type Stats struct {
	Hits      int64
	Misses    int64
	Inserts   int64
	Evictions int64
	Entries   int
}

// Cache maps synthesis requests to previously synthesized audio artifacts.
// A miss is a normal outcome, not an error. Insert triggers a synchronous
// eviction pass that keeps the store at or below its entry bound, removing
// oldest-created entries first with insertion order breaking timestamp ties.
type Cache struct {
	store  Store
	clock  Clock
	max    int
	logger *log.Logger

	mu    sync.Mutex
	seq   uint64
	stats Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(cc *Cache) { cc.clock = c }
}

// WithMaxEntries sets the store entry bound. Values < 1 keep the default.
func WithMaxEntries(n int) Option {
	return func(cc *Cache) {
		if n >= 1 {
			cc.max = n
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(l *log.Logger) Option {
	return func(cc *Cache) { cc.logger = l }
}

// New creates a cache over the given store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		clock:  systemClock{},
		max:    DefaultMaxEntries,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Resume the insertion sequence past anything already stored so ties
	// against surviving entries still resolve in insertion order.
	for _, e := range store.List() {
		if e.Seq >= c.seq {
			c.seq = e.Seq + 1
		}
	}

	return c
}

// Lookup returns the cached artifact for req, or ok=false on a miss. Store
// read failures are logged and surface as a miss; the store is never
// mutated by a lookup.
func (c *Cache) Lookup(req Request) ([]byte, bool) {
	key := req.Key()

	data, err := c.store.Read(key)
	if err != nil {
		c.mu.Lock()
		c.stats.Misses++
		c.mu.Unlock()

		if !errors.Is(err, ErrNotFound) {
			c.logger.Error("cache read failed", "key", key, "err", err)
		}
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()

	return data, true
}

// Insert stores artifact under req's fingerprint, overwriting silently if
// the key already exists, then evicts oldest entries until the store is
// within its bound. Returns the recorded entry.
func (c *Cache) Insert(req Request, artifact []byte) (Entry, error) {
	if err := req.Validate(); err != nil {
		return Entry{}, fmt.Errorf("invalid synthesis request: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Key:     req.Key(),
		Size:    int64(len(artifact)),
		Created: c.clock.Now(),
		Seq:     c.seq,
	}
	c.seq++

	if err := c.store.Write(entry, artifact); err != nil {
		return Entry{}, fmt.Errorf("cache insert failed: %w", err)
	}
	c.stats.Inserts++

	c.evictLocked()

	return entry, nil
}

// evictLocked removes oldest-first until the store is within bounds.
// Artifact delete failures are logged and do not abort the pass.
func (c *Cache) evictLocked() {
	for c.store.Len() > c.max {
		entries := c.store.List()
		if len(entries) == 0 {
			return
		}
		oldest := entries[0]
		if err := c.store.Delete(oldest.Key); err != nil {
			c.logger.Warn("failed to delete evicted artifact",
				"key", oldest.Key, "err", err)
		}
		c.stats.Evictions++
	}
}

// Clear removes all entries. Intended for explicit user action only.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("cache clear failed: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Max returns the configured entry bound.
func (c *Cache) Max() int {
	return c.max
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = c.store.Len()
	return stats
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
