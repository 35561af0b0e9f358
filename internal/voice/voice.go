// Package voice holds the voice catalog and the fallback selection policy
// that maps a requested voice identifier to one the provider can serve.
package voice

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var (
	// ErrEmptyCatalog is returned when resolution is attempted against a
	// catalog with no voices. This is a configuration error, distinct from
	// any provider failure, and is the only fatal condition here.
	ErrEmptyCatalog = errors.New("voice catalog is empty")

	// ErrInvalidVoice is returned when a catalog entry fails validation.
	ErrInvalidVoice = errors.New("invalid voice descriptor")
)

// Voice describes one synthesizable voice.
type Voice struct {
	// ID is the provider's voice identifier, e.g. "en-US-natalie".
	ID string

	// Name is the human-readable display name.
	Name string

	// Language is the BCP 47 tag the voice speaks, e.g. "en-US".
	Language string

	// Gender is the provider-reported gender label.
	Gender string
}

// Validate checks the descriptor fields. The language tag must parse so
// that language-based fallback matching stays well defined.
func (v Voice) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidVoice)
	}
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: %s has no display name", ErrInvalidVoice, v.ID)
	}
	if _, err := language.Parse(v.Language); err != nil {
		return fmt.Errorf("%w: %s has unparseable language %q: %v",
			ErrInvalidVoice, v.ID, v.Language, err)
	}
	return nil
}

// languageOf extracts the language portion of a voice identifier shaped
// like "en-US-natalie". Returns the undefined tag when nothing parses.
func languageOf(id string) language.Tag {
	parts := strings.Split(id, "-")
	for n := min(len(parts), 2); n > 0; n-- {
		tag, err := language.Parse(strings.Join(parts[:n], "-"))
		if err == nil {
			return tag
		}
	}
	return language.Und
}
