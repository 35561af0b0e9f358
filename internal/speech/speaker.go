package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/murmur/internal/audio"
	"github.com/dgnsrekt/murmur/internal/cache"
	"github.com/dgnsrekt/murmur/internal/queue"
	"github.com/dgnsrekt/murmur/internal/voice"
)

// Synthesizer produces audio for a synthesis request. Implemented by the
// provider client; stubbed in tests.
type Synthesizer interface {
	Synthesize(ctx context.Context, req cache.Request) ([]byte, error)
}

// ErrNothingToSay is returned when markup stripping leaves no speakable
// text.
var ErrNothingToSay = errors.New("nothing to say after stripping markup")

// Options configure a Speaker.
type Options struct {
	// Voice is the preferred voice identifier, resolved against the
	// catalog before every synthesis.
	Voice string

	// Speed and Pitch are passed through to the provider.
	Speed float64
	Pitch float64

	Logger *log.Logger
}

// Speaker turns assistant replies into audible speech. Utterances queue
// up and a single background worker drains them, so replies play in
// order and synthesis never blocks the UI loop.
type Speaker struct {
	cache    *cache.Cache
	provider Synthesizer
	resolver *voice.Resolver
	player   audio.Player
	queue    *queue.Queue
	logger   *log.Logger

	mu    sync.Mutex
	voice string

	speed float64
	pitch float64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSpeaker wires the pipeline and starts its worker.
func NewSpeaker(c *cache.Cache, provider Synthesizer, resolver *voice.Resolver,
	player audio.Player, opts Options) *Speaker {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Speed == 0 {
		opts.Speed = 1.0
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Speaker{
		cache:    c,
		provider: provider,
		resolver: resolver,
		player:   player,
		queue:    queue.New(0),
		logger:   opts.Logger,
		voice:    opts.Voice,
		speed:    opts.Speed,
		pitch:    opts.Pitch,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.work(ctx)

	return s
}

// SetVoice changes the preferred voice for subsequent utterances.
func (s *Speaker) SetVoice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = id
}

// Voice returns the preferred voice identifier.
func (s *Speaker) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Say queues text for speech. Priority utterances, such as a replay the
// user asked for, jump the queue.
func (s *Speaker) Say(id, text string, priority bool) error {
	stripped := StripMarkup(text)
	if stripped == "" {
		return ErrNothingToSay
	}
	return s.queue.Enqueue(queue.Utterance{ID: id, Text: stripped}, priority)
}

// Speaking reports whether a clip is currently playing.
func (s *Speaker) Speaking() bool {
	return s.player.IsPlaying()
}

// Stop halts current playback and drops queued utterances.
func (s *Speaker) Stop() error {
	s.queue.Clear()
	return s.player.Stop()
}

// Synthesize resolves the voice and returns audio for text, consulting
// the cache before the provider. Exposed for the voice-picker's test
// utterance; Say's worker uses the same path.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resolved, err := s.resolver.Resolve(s.Voice())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve voice: %w", err)
	}

	req := cache.Request{
		Text:   text,
		Voice:  resolved,
		Format: cache.FormatMP3,
		Speed:  s.speed,
		Pitch:  s.pitch,
	}

	if artifact, ok := s.cache.Lookup(req); ok {
		return artifact, nil
	}

	artifact, err := s.provider.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	if _, err := s.cache.Insert(req, artifact); err != nil {
		s.logger.Warn("failed to cache synthesized clip", "err", err)
	}
	return artifact, nil
}

func (s *Speaker) work(ctx context.Context) {
	defer close(s.done)

	for {
		u, err := s.queue.Dequeue(ctx)
		if err != nil {
			return
		}

		artifact, err := s.Synthesize(ctx, u.Text)
		if err != nil {
			s.logger.Error("synthesis failed", "utterance", u.ID, "err", err)
			continue
		}

		playDone, err := s.player.Play(artifact)
		if err != nil {
			s.logger.Error("playback failed", "utterance", u.ID, "err", err)
			continue
		}

		select {
		case <-playDone:
		case <-ctx.Done():
			s.player.Stop() //nolint:errcheck
			return
		}
	}
}

// Close stops the worker and waits for it to exit. The player and cache
// are owned by the caller and are not closed here.
func (s *Speaker) Close() {
	s.queue.Close()
	s.cancel()
	<-s.done
}
