// Package cue builds word-level highlight timelines and resolves
// playback positions against them.
package cue

import (
	"sort"
	"time"

	"github.com/voxsync/voxsync/tts"
)

// minStep is the smallest per-word window. Durations shorter than a
// millisecond per word collapse to this floor instead of zero.
const minStep = time.Millisecond

// Build partitions [0, total) into count windows of (as close as
// possible to) equal width, one per word, in increasing word order.
// The per-word step is total/count floored to whole milliseconds with
// a one millisecond minimum; the final cue's end is forced to total so
// the timeline always covers the full audio regardless of rounding.
//
// A zero count or zero total returns nil: nothing to highlight is not
// an error.
func Build(count int, total time.Duration) []tts.WordCue {
	if count <= 0 || total <= 0 {
		return nil
	}

	step := (total / time.Duration(count)).Truncate(time.Millisecond)
	if step < minStep {
		step = minStep
	}

	cues := make([]tts.WordCue, count)
	for i := 0; i < count; i++ {
		start := time.Duration(i) * step
		if start > total {
			start = total
		}
		end := time.Duration(i+1) * step
		if end > total {
			end = total
		}
		cues[i] = tts.WordCue{WordIndex: i, Start: start, End: end}
	}
	cues[count-1].End = total

	return cues
}

// FromOffsets builds a timeline from the engine's per-chunk text
// offset hints when they are usable, anchoring marked words at the
// playback time their chunk began and distributing the words between
// anchors uniformly. When the marks are absent, non-monotonic, or out
// of range, it falls back to the uniform partition of Build.
//
// The result honors the same invariants as Build: cues are contiguous,
// start at zero, and the final cue's end equals total exactly.
func FromOffsets(boundaries []tts.WordBoundary, audio *tts.AssembledAudio, total time.Duration) []tts.WordCue {
	count := len(boundaries)
	if count == 0 || total <= 0 {
		return nil
	}

	anchors := usableAnchors(boundaries, audio, total)
	if len(anchors) == 0 {
		return Build(count, total)
	}

	// starts[i] is the start time of word i; starts[count] == total.
	starts := make([]time.Duration, count+1)
	starts[count] = total

	prevWord, prevTime := 0, time.Duration(0)
	for _, a := range anchors {
		starts[a.word] = a.at
		fill(starts, prevWord, a.word, prevTime, a.at)
		prevWord, prevTime = a.word, a.at
	}
	fill(starts, prevWord, count, prevTime, total)

	cues := make([]tts.WordCue, count)
	for i := 0; i < count; i++ {
		cues[i] = tts.WordCue{WordIndex: i, Start: starts[i], End: starts[i+1]}
	}
	return cues
}

// Resolve returns the word index of the cue whose window contains the
// playback position. An empty timeline resolves to 0, and positions at
// or beyond the final cue's end clamp to the last word: playback can
// transiently overshoot the nominal duration and that is not an error.
//
// Cues are contiguous and sorted by start, so a binary search over the
// start times gives the same answer as a forward scan.
func Resolve(pos time.Duration, cues []tts.WordCue) int {
	if len(cues) == 0 {
		return 0
	}
	last := cues[len(cues)-1]
	if pos >= last.End {
		return last.WordIndex
	}
	// First cue whose start exceeds pos; the one before contains it.
	i := sort.Search(len(cues), func(i int) bool {
		return cues[i].Start > pos
	})
	if i == 0 {
		return cues[0].WordIndex
	}
	return cues[i-1].WordIndex
}

// anchor pins one word to the playback time its chunk began.
type anchor struct {
	word int
	at   time.Duration
}

// usableAnchors converts offset marks to word anchors, discarding the
// whole set if any mark is out of range or the sequence is not
// strictly increasing in both word index and time. Imprecise engine
// metadata degrades to the uniform fallback rather than producing a
// non-monotonic timeline.
func usableAnchors(boundaries []tts.WordBoundary, audio *tts.AssembledAudio, total time.Duration) []anchor {
	if audio == nil || audio.SampleRate <= 0 || len(audio.Marks) == 0 {
		return nil
	}

	anchors := make([]anchor, 0, len(audio.Marks))
	prevWord, prevTime := -1, time.Duration(-1)
	for _, m := range audio.Marks {
		if m.TextOffset < 0 || m.SampleOffset < 0 {
			return nil
		}
		at := time.Duration(m.SampleOffset) * time.Second / time.Duration(audio.SampleRate)
		if at > total {
			return nil
		}
		word := wordAt(boundaries, m.TextOffset)
		if word <= prevWord || at <= prevTime {
			// Drop duplicate hints for the same word, reject regressions.
			if word == prevWord || (word > prevWord && at == prevTime) {
				continue
			}
			return nil
		}
		if word == 0 {
			prevWord, prevTime = word, at
			continue // word zero always starts at zero
		}
		anchors = append(anchors, anchor{word: word, at: at})
		prevWord, prevTime = word, at
	}
	return anchors
}

// wordAt returns the index of the word containing the rune offset, or
// the nearest following word when the offset falls in a gap.
func wordAt(boundaries []tts.WordBoundary, offset int) int {
	i := sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i].End > offset
	})
	if i >= len(boundaries) {
		return len(boundaries) - 1
	}
	return i
}

// fill distributes word starts uniformly across (from, to), exclusive
// on both ends; starts[from] and starts[to] are already anchored.
func fill(starts []time.Duration, from, to int, fromTime, toTime time.Duration) {
	span := to - from
	if span <= 1 {
		return
	}
	width := toTime - fromTime
	for i := 1; i < span; i++ {
		starts[from+i] = fromTime + width*time.Duration(i)/time.Duration(span)
	}
}
