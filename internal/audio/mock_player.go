package audio

import (
	"errors"
	"sync"
)

// MockPlayer is a Player that records calls instead of producing sound.
// Playback "finishes" only when FinishPlayback is called, so tests can
// observe the playing state deterministically.
type MockPlayer struct {
	mu      sync.Mutex
	playing bool
	closed  bool
	done    chan struct{}

	// Clips records every payload handed to Play, in order.
	Clips [][]byte

	// PlayErr, when set, is returned by the next Play call.
	PlayErr error

	stops int
}

// NewMockPlayer returns an idle mock.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

func (m *MockPlayer) Play(clip []byte) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrPlayerClosed
	}
	if m.PlayErr != nil {
		err := m.PlayErr
		m.PlayErr = nil
		return nil, err
	}
	if len(clip) == 0 {
		return nil, errors.New("clip is empty")
	}

	m.finishLocked()

	copied := make([]byte, len(clip))
	copy(copied, clip)
	m.Clips = append(m.Clips, copied)

	m.playing = true
	m.done = make(chan struct{})
	return m.done, nil
}

func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrPlayerClosed
	}
	m.stops++
	m.finishLocked()
	return nil
}

func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.playing
}

func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finishLocked()
	m.closed = true
	return nil
}

// FinishPlayback simulates the current clip draining naturally.
func (m *MockPlayer) FinishPlayback() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.finishLocked()
}

// StopCount returns how many times Stop was called.
func (m *MockPlayer) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stops
}

func (m *MockPlayer) finishLocked() {
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	m.playing = false
}

var _ Player = (*MockPlayer)(nil)
