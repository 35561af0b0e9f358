package voice

import "fmt"

// Catalog is an ordered, read-only set of voices. It is populated once at
// startup, from the provider's list endpoint or a static fallback, and
// never mutated during a session.
type Catalog struct {
	voices []Voice
	byID   map[string]int
}

// NewCatalog validates every descriptor and builds an ordered catalog.
// Malformed entries fail construction outright rather than being skipped.
func NewCatalog(voices []Voice) (*Catalog, error) {
	c := &Catalog{
		voices: make([]Voice, 0, len(voices)),
		byID:   make(map[string]int, len(voices)),
	}
	for _, v := range voices {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidVoice, v.ID)
		}
		c.byID[v.ID] = len(c.voices)
		c.voices = append(c.voices, v)
	}
	return c, nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Get returns the voice for id.
func (c *Catalog) Get(id string) (Voice, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Voice{}, false
	}
	return c.voices[i], true
}

// Voices returns the catalog in its original order. The slice is a copy.
func (c *Catalog) Voices() []Voice {
	out := make([]Voice, len(c.voices))
	copy(out, c.voices)
	return out
}

// Len returns the number of voices.
func (c *Catalog) Len() int {
	return len(c.voices)
}
