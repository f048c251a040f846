package tts

import "time"

// WordBoundary identifies one word in the source text as a rune range.
type WordBoundary struct {
	Index int // 0-based position in the segmented sequence
	Start int // rune offset of the first character
	End   int // rune offset one past the last character
}

// WordCue associates one word with a window of playback time.
// Cues are contiguous: each cue's End equals the next cue's Start,
// and the final cue's End equals the total audio duration exactly.
type WordCue struct {
	WordIndex int
	Start     time.Duration
	End       time.Duration
}

// Contains reports whether the playback position falls inside this cue.
func (c WordCue) Contains(pos time.Duration) bool {
	return pos >= c.Start && pos < c.End
}

// AudioChunk is one unit of an engine's streamed output: raw
// little-endian 16-bit mono samples plus best-effort metadata.
// SampleRate may be zero on every chunk except the first meaningful
// one. SourceTextOffset is a rune offset into the request text, or -1
// when the engine cannot provide one.
type AudioChunk struct {
	PCM              []byte
	SampleRate       int
	SourceTextOffset int
}

// OffsetMark records where in the sample stream a chunk began and
// which part of the source text the engine associated with it. Marks
// are collected during assembly and can tighten cue timing when the
// engine reports usable offsets.
type OffsetMark struct {
	SampleOffset int // sample index at which the chunk started
	TextOffset   int // rune offset into the request text
}

// AssembledAudio is the result of draining one engine stream: the
// concatenated sample bytes, the authoritative sample rate, and the
// offset marks gathered along the way.
type AssembledAudio struct {
	PCM         []byte
	SampleRate  int
	SampleCount int
	Marks       []OffsetMark
}

// Duration derives the playback length from the sample count. It is
// an estimate until the player has loaded the container; the player's
// measured duration is definitive.
func (a *AssembledAudio) Duration() time.Duration {
	if a == nil || a.SampleRate <= 0 || a.SampleCount <= 0 {
		return 0
	}
	return time.Duration(a.SampleCount) * time.Second / time.Duration(a.SampleRate)
}

// Audio is a playable unit: a self-describing WAV container plus the
// format facts the player needs without re-parsing the header.
type Audio struct {
	Data       []byte // complete WAV container, header followed by samples
	SampleRate int
	Duration   time.Duration
}

// Request describes one speak operation.
type Request struct {
	Text   string
	Engine string  // engine selection, empty means the configured default
	Gain   float64 // linear gain multiplier, 0 or 1 means unchanged
}
