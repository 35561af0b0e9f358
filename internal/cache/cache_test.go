package cache

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

// fixedClock returns a preset time, advancing only when told to.
type fixedClock struct {
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func requestN(n int) Request {
	req := baseRequest()
	req.Text = fmt.Sprintf("utterance %d", n)
	return req
}

func TestCache_RoundTrip(t *testing.T) {
	c := New(NewMemoryStore(), WithClock(newFixedClock()))

	req := baseRequest()
	artifact := []byte("mp3-bytes-here")

	if _, err := c.Insert(req, artifact); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, ok := c.Lookup(req)
	if !ok {
		t.Fatal("Lookup missed after Insert")
	}
	if !bytes.Equal(got, artifact) {
		t.Errorf("artifact mismatch: got %q, want %q", got, artifact)
	}
}

func TestCache_LookupMissIsNotAnError(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, WithClock(newFixedClock()))

	if _, ok := c.Lookup(baseRequest()); ok {
		t.Fatal("Lookup hit on an empty cache")
	}
	if store.Len() != 0 {
		t.Errorf("lookup mutated the store: %d entries", store.Len())
	}

	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestCache_InsertOverwritesSilently(t *testing.T) {
	c := New(NewMemoryStore(), WithClock(newFixedClock()))

	req := baseRequest()
	if _, err := c.Insert(req, []byte("first")); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if _, err := c.Insert(req, []byte("second")); err != nil {
		t.Fatalf("second Insert failed: %v", err)
	}

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after overwrite, got %d", c.Len())
	}

	got, ok := c.Lookup(req)
	if !ok || string(got) != "second" {
		t.Errorf("expected overwritten artifact, got %q (ok=%v)", got, ok)
	}
}

func TestCache_InsertRejectsInvalidRequest(t *testing.T) {
	c := New(NewMemoryStore())

	req := baseRequest()
	req.Text = ""

	if _, err := c.Insert(req, []byte("x")); err == nil {
		t.Fatal("Insert accepted an invalid request")
	}
	if c.Len() != 0 {
		t.Errorf("invalid insert mutated the store")
	}
}

func TestCache_EvictionKeepsMostRecent(t *testing.T) {
	const max = 10
	clock := newFixedClock()
	c := New(NewMemoryStore(), WithClock(clock), WithMaxEntries(max))

	const total = 25
	for i := 0; i < total; i++ {
		if _, err := c.Insert(requestN(i), []byte(fmt.Sprintf("audio-%d", i))); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		clock.Advance(time.Second)
	}

	if c.Len() != max {
		t.Fatalf("expected %d entries, got %d", max, c.Len())
	}

	// Only the max most recent survive.
	for i := 0; i < total; i++ {
		_, ok := c.Lookup(requestN(i))
		wantOK := i >= total-max
		if ok != wantOK {
			t.Errorf("request %d: cached=%v, want %v", i, ok, wantOK)
		}
	}

	stats := c.Stats()
	if stats.Evictions != total-max {
		t.Errorf("expected %d evictions, got %d", total-max, stats.Evictions)
	}
}

func TestCache_FiftyPlusOneEvictsExactlyOldest(t *testing.T) {
	clock := newFixedClock()
	c := New(NewMemoryStore(), WithClock(clock)) // default max of 50

	for i := 0; i < 50; i++ {
		if _, err := c.Insert(requestN(i), []byte("a")); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		clock.Advance(time.Millisecond)
	}
	if c.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", c.Len())
	}

	if _, err := c.Insert(requestN(50), []byte("a")); err != nil {
		t.Fatalf("Insert 50 failed: %v", err)
	}

	if c.Len() != 50 {
		t.Errorf("expected 50 entries after overflow insert, got %d", c.Len())
	}
	if _, ok := c.Lookup(requestN(0)); ok {
		t.Error("oldest entry survived the eviction pass")
	}
	if _, ok := c.Lookup(requestN(1)); !ok {
		t.Error("second-oldest entry was evicted; only the oldest should go")
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("expected exactly 1 eviction, got %d", got)
	}
}

func TestCache_EvictionTieBreaksByInsertionOrder(t *testing.T) {
	// Clock never advances: every entry carries the same timestamp, so
	// the insertion sequence must decide eviction order.
	clock := newFixedClock()
	c := New(NewMemoryStore(), WithClock(clock), WithMaxEntries(3))

	for i := 0; i < 4; i++ {
		if _, err := c.Insert(requestN(i), []byte("a")); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	if _, ok := c.Lookup(requestN(0)); ok {
		t.Error("first-inserted entry survived a same-timestamp eviction")
	}
	for i := 1; i < 4; i++ {
		if _, ok := c.Lookup(requestN(i)); !ok {
			t.Errorf("entry %d evicted out of insertion order", i)
		}
	}
}

func TestCache_SequenceResumesAcrossInstances(t *testing.T) {
	clock := newFixedClock()
	store := NewMemoryStore()

	c1 := New(store, WithClock(clock), WithMaxEntries(5))
	for i := 0; i < 3; i++ {
		if _, err := c1.Insert(requestN(i), []byte("a")); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	// New cache over the same store, same frozen clock. Ties between old
	// and new entries must still evict the oldest-inserted first.
	c2 := New(store, WithClock(clock), WithMaxEntries(3))
	if _, err := c2.Insert(requestN(3), []byte("a")); err != nil {
		t.Fatalf("Insert after reopen failed: %v", err)
	}

	if _, ok := c2.Lookup(requestN(0)); ok {
		t.Error("oldest pre-existing entry survived eviction after reopen")
	}
	if _, ok := c2.Lookup(requestN(3)); !ok {
		t.Error("newest entry was evicted after reopen")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(NewMemoryStore(), WithClock(newFixedClock()))

	for i := 0; i < 5; i++ {
		if _, err := c.Insert(requestN(i), []byte("a")); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", c.Len())
	}
	for i := 0; i < 5; i++ {
		if _, ok := c.Lookup(requestN(i)); ok {
			t.Errorf("entry %d still present after Clear", i)
		}
	}
}

func TestCache_StatsCounters(t *testing.T) {
	c := New(NewMemoryStore(), WithClock(newFixedClock()))

	req := baseRequest()
	c.Lookup(req) // miss
	if _, err := c.Insert(req, []byte("a")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	c.Lookup(req) // hit
	c.Lookup(req) // hit

	stats := c.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Inserts != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
	if stats.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.Entries)
	}
}
