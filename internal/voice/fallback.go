package voice

import "golang.org/x/text/language"

// DefaultFallbackChain lists known-good voices tried in order when a
// requested voice is unavailable.
var DefaultFallbackChain = []string{
	"en-US-natalie",
	"en-US-terrell",
	"en-GB-charlotte",
	"en-IN-priya",
}

// Resolver maps a requested voice identifier to one present in the
// catalog. Resolution is a pure function of (requested id, catalog,
// chain) so the policy is exhaustively table-testable.
type Resolver struct {
	catalog *Catalog
	chain   []string
}

// NewResolver builds a resolver over catalog. A nil chain uses
// DefaultFallbackChain.
func NewResolver(catalog *Catalog, chain []string) *Resolver {
	if chain == nil {
		chain = DefaultFallbackChain
	}
	return &Resolver{catalog: catalog, chain: chain}
}

// Resolve returns a usable voice id for requested.
//
// Order: the requested id itself when present; the first fallback chain
// member present; the first catalog voice speaking the requested id's
// language; the first catalog entry. An empty catalog is the only error.
func (r *Resolver) Resolve(requested string) (string, error) {
	if r.catalog.Len() == 0 {
		return "", ErrEmptyCatalog
	}

	if r.catalog.Has(requested) {
		return requested, nil
	}

	for _, id := range r.chain {
		if r.catalog.Has(id) {
			return id, nil
		}
	}

	if id, ok := r.nearestByLanguage(requested); ok {
		return id, nil
	}

	return r.catalog.Voices()[0].ID, nil
}

// nearestByLanguage finds the first catalog voice whose language matches
// the locale prefix of the requested identifier, exact region first and
// base language second.
func (r *Resolver) nearestByLanguage(requested string) (string, bool) {
	want := languageOf(requested)
	if want == language.Und {
		return "", false
	}

	wantBase, _ := want.Base()
	baseMatch := ""
	for _, v := range r.catalog.Voices() {
		tag, err := language.Parse(v.Language)
		if err != nil {
			continue
		}
		if tag == want {
			return v.ID, true
		}
		if base, _ := tag.Base(); base == wantBase && baseMatch == "" {
			baseMatch = v.ID
		}
	}
	if baseMatch != "" {
		return baseMatch, true
	}
	return "", false
}
