package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// Player plays one mp3 clip at a time. Starting a new clip stops the
// current one.
type Player interface {
	// Play decodes and starts the clip. It returns once playback has
	// started; done is closed when the clip finishes or is stopped.
	Play(clip []byte) (done <-chan struct{}, err error)

	// Stop halts playback. Safe to call when idle.
	Stop() error

	// IsPlaying reports whether a clip is currently playing.
	IsPlaying() bool

	// Close releases the audio device.
	Close() error
}

// ErrPlayerClosed is returned after Close.
var ErrPlayerClosed = errors.New("audio player is closed")

// otoPlayer is the device-backed Player. The oto context is created once
// and reused; creating a second context on most platforms fails.
type otoPlayer struct {
	context *oto.Context

	mu      sync.Mutex
	current *oto.Player
	stream  *bytes.Reader
	done    chan struct{}
	closed  bool
}

// sampleRate is fixed at decode time by resampling-free go-mp3 output;
// the oto context must match it.
const sampleRate = 44100

// NewPlayer opens the audio device.
func NewPlayer() (Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	return &otoPlayer{context: ctx}, nil
}

func (p *otoPlayer) Play(clip []byte) (<-chan struct{}, error) {
	if len(clip) == 0 {
		return nil, errors.New("clip is empty")
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(clip))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	if decoder.SampleRate() != sampleRate {
		return nil, fmt.Errorf("unsupported sample rate %d, want %d",
			decoder.SampleRate(), sampleRate)
	}

	// Decode fully up front. Clips are short utterances, and a memory
	// reader keeps the PCM alive for the whole playback.
	var pcm bytes.Buffer
	if _, err := pcm.ReadFrom(decoder); err != nil {
		return nil, fmt.Errorf("failed to decode mp3 stream: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPlayerClosed
	}
	p.stopLocked()

	p.stream = bytes.NewReader(pcm.Bytes())
	p.current = p.context.NewPlayer(p.stream)
	p.done = make(chan struct{})
	p.current.Play()

	go p.watch(p.current, p.done)

	return p.done, nil
}

// watch closes done when the clip drains, then releases the oto player
// if it is still the active one.
func (p *otoPlayer) watch(player *oto.Player, done chan struct{}) {
	for player.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == player {
		p.stopLocked()
	}
	select {
	case <-done:
	default:
		close(done)
	}
}

func (p *otoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	p.stopLocked()
	return nil
}

// stopLocked tears down the active clip. Caller holds mu.
func (p *otoPlayer) stopLocked() {
	if p.current == nil {
		return
	}
	p.current.Pause()
	p.current.Close() //nolint:errcheck
	p.current = nil
	p.stream = nil

	if p.done != nil {
		select {
		case <-p.done:
		default:
			close(p.done)
		}
		p.done = nil
	}
}

func (p *otoPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current != nil && p.current.IsPlaying()
}

func (p *otoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.stopLocked()
	p.closed = true

	// oto contexts have no Close in v3; dropping the reference is the
	// supported teardown.
	p.context = nil
	return nil
}
