package cue_test

import (
	"testing"
	"time"

	"github.com/voxsync/voxsync/tts"
	"github.com/voxsync/voxsync/tts/cue"
	"github.com/voxsync/voxsync/tts/segment"
)

// TestBuildEvenSplit covers the exact-division case: two words over
// two seconds yields two even one-second windows.
func TestBuildEvenSplit(t *testing.T) {
	cues := cue.Build(2, 2000*time.Millisecond)
	want := []tts.WordCue{
		{WordIndex: 0, Start: 0, End: 1000 * time.Millisecond},
		{WordIndex: 1, Start: 1000 * time.Millisecond, End: 2000 * time.Millisecond},
	}
	if len(cues) != len(want) {
		t.Fatalf("got %d cues, want %d", len(cues), len(want))
	}
	for i := range cues {
		if cues[i] != want[i] {
			t.Errorf("cue %d = %+v, want %+v", i, cues[i], want[i])
		}
	}
}

// TestBuildRoundingRemainder verifies the last cue absorbs rounding
// drift: three words over one second floors to a 333ms step but the
// final end is forced to exactly one second.
func TestBuildRoundingRemainder(t *testing.T) {
	cues := cue.Build(3, 1000*time.Millisecond)
	want := []tts.WordCue{
		{WordIndex: 0, Start: 0, End: 333 * time.Millisecond},
		{WordIndex: 1, Start: 333 * time.Millisecond, End: 666 * time.Millisecond},
		{WordIndex: 2, Start: 666 * time.Millisecond, End: 1000 * time.Millisecond},
	}
	for i := range cues {
		if cues[i] != want[i] {
			t.Errorf("cue %d = %+v, want %+v", i, cues[i], want[i])
		}
	}
}

// TestBuildGuards verifies the zero-input guards return nil, not an error.
func TestBuildGuards(t *testing.T) {
	if cues := cue.Build(0, time.Second); cues != nil {
		t.Errorf("Build(0, 1s) = %v, want nil", cues)
	}
	if cues := cue.Build(5, 0); cues != nil {
		t.Errorf("Build(5, 0) = %v, want nil", cues)
	}
}

// TestBuildCoverage checks the contiguity invariant across a spread of shapes.
func TestBuildCoverage(t *testing.T) {
	cases := []struct {
		count int
		total time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{7, 1300 * time.Millisecond},
		{100, 900 * time.Millisecond},
		{3, 2 * time.Millisecond}, // more words than milliseconds
	}
	for _, tc := range cases {
		cues := cue.Build(tc.count, tc.total)
		if len(cues) != tc.count {
			t.Fatalf("Build(%d, %v) returned %d cues", tc.count, tc.total, len(cues))
		}
		if cues[0].Start != 0 {
			t.Errorf("Build(%d, %v) first cue starts at %v", tc.count, tc.total, cues[0].Start)
		}
		if cues[len(cues)-1].End != tc.total {
			t.Errorf("Build(%d, %v) last cue ends at %v, want %v",
				tc.count, tc.total, cues[len(cues)-1].End, tc.total)
		}
		for i := 1; i < len(cues); i++ {
			if cues[i].Start != cues[i-1].End {
				t.Errorf("Build(%d, %v) gap between cue %d and %d: %v != %v",
					tc.count, tc.total, i-1, i, cues[i-1].End, cues[i].Start)
			}
		}
	}
}

// TestResolve covers in-window lookup, overshoot clamping, and the
// empty-timeline default.
func TestResolve(t *testing.T) {
	cues := cue.Build(2, 2000*time.Millisecond)

	tests := []struct {
		name string
		pos  time.Duration
		cues []tts.WordCue
		want int
	}{
		{"start of first word", 0, cues, 0},
		{"inside first word", 500 * time.Millisecond, cues, 0},
		{"boundary belongs to next word", 1000 * time.Millisecond, cues, 1},
		{"inside second word", 1500 * time.Millisecond, cues, 1},
		{"at nominal end clamps to last", 2000 * time.Millisecond, cues, 1},
		{"overshoot clamps to last", 5 * time.Second, cues, 1},
		{"empty timeline", time.Second, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cue.Resolve(tt.pos, tt.cues); got != tt.want {
				t.Errorf("Resolve(%v) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}
}

// TestResolveTotality checks that every position in [0, total] maps to
// a valid index for a representative timeline.
func TestResolveTotality(t *testing.T) {
	const count = 9
	total := 1234 * time.Millisecond
	cues := cue.Build(count, total)

	for pos := time.Duration(0); pos <= total; pos += 7 * time.Millisecond {
		got := cue.Resolve(pos, cues)
		if got < 0 || got >= count {
			t.Fatalf("Resolve(%v) = %d, outside [0, %d)", pos, got, count)
		}
	}
	if got := cue.Resolve(total+time.Second, cues); got != count-1 {
		t.Errorf("Resolve beyond end = %d, want %d", got, count-1)
	}
}

// TestResolveMatchesScan verifies the binary search agrees with a
// forward scan over the same timeline.
func TestResolveMatchesScan(t *testing.T) {
	cues := cue.Build(13, 3217*time.Millisecond)
	scan := func(pos time.Duration) int {
		for _, c := range cues {
			if c.Contains(pos) {
				return c.WordIndex
			}
		}
		return cues[len(cues)-1].WordIndex
	}
	for pos := time.Duration(0); pos < 3500*time.Millisecond; pos += 11 * time.Millisecond {
		if got, want := cue.Resolve(pos, cues), scan(pos); got != want {
			t.Fatalf("Resolve(%v) = %d, scan = %d", pos, got, want)
		}
	}
}

// TestFromOffsetsAnchorsWords verifies that usable engine hints shift
// cue starts toward the reported chunk times.
func TestFromOffsetsAnchorsWords(t *testing.T) {
	text := "alpha beta gamma delta"
	boundaries := segment.Words(text)
	total := 4 * time.Second

	audio := &tts.AssembledAudio{
		SampleRate:  16000,
		SampleCount: 64000,
		Marks: []tts.OffsetMark{
			{SampleOffset: 0, TextOffset: 0},
			// "gamma" starts at rune 11; its chunk began 3s in.
			{SampleOffset: 48000, TextOffset: 11},
		},
	}

	cues := cue.FromOffsets(boundaries, audio, total)
	if len(cues) != 4 {
		t.Fatalf("got %d cues, want 4", len(cues))
	}
	if cues[2].Start != 3*time.Second {
		t.Errorf("anchored word starts at %v, want 3s", cues[2].Start)
	}
	// Words before the anchor split the first three seconds evenly.
	if cues[1].Start != 1500*time.Millisecond {
		t.Errorf("interpolated word starts at %v, want 1.5s", cues[1].Start)
	}
	if cues[0].Start != 0 {
		t.Errorf("first cue starts at %v, want 0", cues[0].Start)
	}
	if cues[3].End != total {
		t.Errorf("last cue ends at %v, want %v", cues[3].End, total)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start != cues[i-1].End {
			t.Errorf("gap between cue %d and %d", i-1, i)
		}
	}
}

// TestFromOffsetsFallsBack verifies unreliable hints degrade to the
// uniform partition rather than a broken timeline.
func TestFromOffsetsFallsBack(t *testing.T) {
	boundaries := segment.Words("one two three")
	total := 3 * time.Second

	cases := []struct {
		name  string
		audio *tts.AssembledAudio
	}{
		{"nil audio", nil},
		{"no marks", &tts.AssembledAudio{SampleRate: 16000}},
		{"no sample rate", &tts.AssembledAudio{Marks: []tts.OffsetMark{{SampleOffset: 0, TextOffset: 0}}}},
		{"negative offset", &tts.AssembledAudio{
			SampleRate: 16000,
			Marks:      []tts.OffsetMark{{SampleOffset: 0, TextOffset: -1}},
		}},
		{"regressing offsets", &tts.AssembledAudio{
			SampleRate: 16000,
			Marks: []tts.OffsetMark{
				{SampleOffset: 16000, TextOffset: 8},
				{SampleOffset: 32000, TextOffset: 4},
			},
		}},
		{"mark beyond duration", &tts.AssembledAudio{
			SampleRate: 16000,
			Marks:      []tts.OffsetMark{{SampleOffset: 16000 * 60, TextOffset: 4}},
		}},
	}

	uniform := cue.Build(len(boundaries), total)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cue.FromOffsets(boundaries, tc.audio, total)
			if len(got) != len(uniform) {
				t.Fatalf("got %d cues, want %d", len(got), len(uniform))
			}
			for i := range got {
				if got[i] != uniform[i] {
					t.Errorf("cue %d = %+v, want uniform %+v", i, got[i], uniform[i])
				}
			}
		})
	}
}
