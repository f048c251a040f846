package tts

import "errors"

// Common errors for the speech pipeline.
var (
	// Engine errors
	ErrEngineNotAvailable = errors.New("speech engine is not available")
	ErrUnknownEngine      = errors.New("unknown speech engine")
	ErrEmptyText          = errors.New("no text to speak")

	// Stream assembly errors
	ErrNoAudioProduced   = errors.New("no audio produced")
	ErrNoSampleRate      = errors.New("stream reported no sample rate")
	ErrUnalignedSamples  = errors.New("pcm payload not aligned to 16-bit samples")
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// Player errors
	ErrNothingToPlay  = errors.New("no audio to play")
	ErrAlreadyPlaying = errors.New("audio is already playing")
	ErrPlayerClosed   = errors.New("audio player has been closed")

	// Synchronizer errors
	ErrInvalidState  = errors.New("invalid state for operation")
	ErrSpeakCanceled = errors.New("speak request canceled")
)
