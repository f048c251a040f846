package tts

import (
	"context"
	"time"
)

// Engine defines the interface for text-to-speech engines.
type Engine interface {
	// Name returns a stable identifier for the engine (e.g. "exec").
	Name() string

	// Synthesize converts text to a live stream of audio chunks. The
	// chunk channel is closed when the stream completes; at most one
	// error is delivered on the error channel before it is closed.
	Synthesize(ctx context.Context, text string) (<-chan AudioChunk, <-chan error)

	// Available reports whether the engine is ready for use.
	Available() bool
}

// AudioPlayer defines the interface for audio playback.
type AudioPlayer interface {
	// Play loads the container and begins playback. The returned
	// duration is the measured length of the loaded audio and is
	// definitive, unlike the assembler's estimate.
	Play(audio *Audio) (time.Duration, error)

	// Stop halts playback and resets position.
	Stop() error

	// Position returns the current playback position.
	Position() time.Duration

	// IsPlaying reports whether audio is currently playing.
	IsPlaying() bool

	// Done returns a channel closed when the current playback
	// finishes or is stopped.
	Done() <-chan struct{}
}
