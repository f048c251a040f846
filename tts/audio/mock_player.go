package audio

import (
	"sync"
	"time"

	"github.com/voxsync/voxsync/tts"
)

// MockPlayer implements tts.AudioPlayer without touching an audio
// device. Tests drive the playback clock explicitly through
// SetPosition and Finish, so position-dependent behavior is
// deterministic.
type MockPlayer struct {
	mu sync.Mutex

	playing  bool
	position time.Duration
	duration time.Duration
	done     chan struct{}

	playCount int
	stopCount int
	lastAudio *tts.Audio
}

// NewMockPlayer creates an idle mock player.
func NewMockPlayer() *MockPlayer {
	done := make(chan struct{})
	close(done)
	return &MockPlayer{done: done}
}

// Play records the audio and returns its duration as the measured value.
func (m *MockPlayer) Play(audio *tts.Audio) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if audio == nil || len(audio.Data) == 0 {
		return 0, tts.ErrNothingToPlay
	}
	if m.playing {
		return 0, tts.ErrAlreadyPlaying
	}

	m.playing = true
	m.position = 0
	m.duration = audio.Duration
	m.lastAudio = audio
	m.done = make(chan struct{})
	m.playCount++
	return audio.Duration, nil
}

// Stop halts playback and resets position.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopCount++
	if !m.playing {
		return nil
	}
	m.playing = false
	m.position = 0
	close(m.done)
	return nil
}

// Position returns the simulated playback position.
func (m *MockPlayer) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// IsPlaying reports whether simulated playback is active.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Done returns a channel closed when playback finishes or is stopped.
func (m *MockPlayer) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// SetPosition moves the simulated playback clock.
func (m *MockPlayer) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

// Finish completes the simulated playback as if the audio drained.
func (m *MockPlayer) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return
	}
	m.playing = false
	m.position = m.duration
	close(m.done)
}

// PlayCount returns how many times Play succeeded.
func (m *MockPlayer) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCount
}

// StopCount returns how many times Stop was called.
func (m *MockPlayer) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCount
}

// LastAudio returns the most recently played audio.
func (m *MockPlayer) LastAudio() *tts.Audio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAudio
}
