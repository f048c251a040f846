//go:build nocgo
// +build nocgo

// Package audio provides audio playback for the speech pipeline.
package audio

import (
	"errors"
	"time"

	"github.com/voxsync/voxsync/tts"
)

// Stub player for builds without CGO. All playback attempts fail; the
// mock player remains available for tests and headless use.

// Player is a stub that reports the audio device as unavailable.
type Player struct{}

// NewPlayer creates a stub player.
func NewPlayer() *Player {
	return &Player{}
}

// Play always fails in nocgo builds.
func (p *Player) Play(_ *tts.Audio) (time.Duration, error) {
	return 0, errors.New("audio device not available in nocgo build")
}

// Stop is a no-op in nocgo builds.
func (p *Player) Stop() error { return nil }

// Position always reports zero in nocgo builds.
func (p *Player) Position() time.Duration { return 0 }

// IsPlaying always reports false in nocgo builds.
func (p *Player) IsPlaying() bool { return false }

// Done returns an already-closed channel in nocgo builds.
func (p *Player) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}
