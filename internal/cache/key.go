package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Format identifies the audio container requested from the provider.
type Format string

const (
	// FormatMP3 is the default synthesis output format.
	FormatMP3 Format = "mp3"

	// FormatWAV is uncompressed PCM in a WAV container.
	FormatWAV Format = "wav"
)

// Synthesis parameter bounds accepted by the provider.
const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
	MinPitch = -20.0
	MaxPitch = 20.0
)

// Common request validation errors.
var (
	ErrEmptyText     = errors.New("synthesis text is empty")
	ErrEmptyVoice    = errors.New("voice identifier is empty")
	ErrInvalidFormat = errors.New("unsupported audio format")
	ErrSpeedRange    = fmt.Errorf("speed must be between %.1f and %.1f", MinSpeed, MaxSpeed)
	ErrPitchRange    = fmt.Errorf("pitch must be between %.1f and %.1f", MinPitch, MaxPitch)
)

// Request is an immutable description of one synthesis call. Two requests
// with identical fields are the same request for caching purposes.
type Request struct {
	// Text is the content to synthesize.
	Text string

	// Voice is the provider voice identifier (e.g. "en-US-natalie").
	Voice string

	// Format is the requested audio container.
	Format Format

	// Speed is the speech rate multiplier.
	Speed float64

	// Pitch is the pitch adjustment in provider units.
	Pitch float64
}

// Validate checks the request against provider bounds.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if r.Voice == "" {
		return ErrEmptyVoice
	}
	switch r.Format {
	case FormatMP3, FormatWAV:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, r.Format)
	}
	if r.Speed < MinSpeed || r.Speed > MaxSpeed {
		return ErrSpeedRange
	}
	if r.Pitch < MinPitch || r.Pitch > MaxPitch {
		return ErrPitchRange
	}
	return nil
}

// Key returns the cache fingerprint for the request. Numeric parameters are
// serialized with fixed precision so float representation differences cannot
// produce spurious misses.
func (r Request) Key() string {
	canonical := fmt.Sprintf("%s|%s|%s|%.3f|%.3f", r.Text, r.Voice, r.Format, r.Speed, r.Pitch)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:16])
}
