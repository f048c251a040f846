// Package segment provides word boundary extraction for highlight sync.
package segment

import (
	"unicode"

	"github.com/voxsync/voxsync/tts"
)

// Words splits text into maximal runs of non-whitespace characters and
// returns one boundary per run, in left-to-right order with sequential
// zero-based indices. Offsets are rune offsets into the input. Empty
// or whitespace-only input yields an empty slice.
//
// The function is pure: the same input always produces the same
// boundaries, and the input is never modified.
func Words(text string) []tts.WordBoundary {
	var boundaries []tts.WordBoundary

	start := -1
	pos := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				boundaries = append(boundaries, tts.WordBoundary{
					Index: len(boundaries),
					Start: start,
					End:   pos,
				})
				start = -1
			}
		} else if start < 0 {
			start = pos
		}
		pos++
	}
	if start >= 0 {
		boundaries = append(boundaries, tts.WordBoundary{
			Index: len(boundaries),
			Start: start,
			End:   pos,
		})
	}

	return boundaries
}

// Text returns the substring of text covered by the boundary. It is a
// convenience for rendering; offsets are rune-based so multi-byte
// input is handled correctly.
func Text(text string, b tts.WordBoundary) string {
	runes := []rune(text)
	if b.Start < 0 || b.End > len(runes) || b.Start >= b.End {
		return ""
	}
	return string(runes[b.Start:b.End])
}
