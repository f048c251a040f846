// Package stream consumes a live synthesis chunk stream and assembles
// it into a playable audio container.
package stream

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/voxsync/voxsync/tts"
)

// bytesPerSample is fixed by the chunk protocol: little-endian 16-bit
// mono samples.
const bytesPerSample = 2

// Assemble drains one engine stream, appending sample bytes in arrival
// order into a single buffer. The first chunk reporting a positive
// sample rate fixes the rate for the whole request; later rates are
// ignored since the protocol guarantees one rate per request. Chunks
// carrying a usable source text offset are recorded as offset marks
// for cue construction.
//
// A stream that completes without producing a single sample is a
// synthesis failure, not valid output. Errors from the stream and
// context cancellation propagate without a partial result.
func Assemble(ctx context.Context, chunks <-chan tts.AudioChunk, errs <-chan error) (*tts.AssembledAudio, error) {
	assembled := &tts.AssembledAudio{}

	for chunks != nil || errs != nil {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			if err := appendChunk(assembled, chunk); err != nil {
				return nil, err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("synthesis stream: %w", err)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if assembled.SampleCount == 0 {
		return nil, tts.ErrNoAudioProduced
	}
	if assembled.SampleRate <= 0 {
		return nil, tts.ErrNoSampleRate
	}

	log.Debug("stream assembled",
		"samples", assembled.SampleCount,
		"sampleRate", assembled.SampleRate,
		"marks", len(assembled.Marks),
		"duration", assembled.Duration())

	return assembled, nil
}

// appendChunk takes ownership of the chunk's sample bytes and folds
// its metadata into the running assembly.
func appendChunk(a *tts.AssembledAudio, chunk tts.AudioChunk) error {
	if len(chunk.PCM)%bytesPerSample != 0 {
		return tts.ErrUnalignedSamples
	}
	if a.SampleRate <= 0 && chunk.SampleRate > 0 {
		a.SampleRate = chunk.SampleRate
	}
	if chunk.SourceTextOffset >= 0 && len(chunk.PCM) > 0 {
		a.Marks = append(a.Marks, tts.OffsetMark{
			SampleOffset: a.SampleCount,
			TextOffset:   chunk.SourceTextOffset,
		})
	}
	a.PCM = append(a.PCM, chunk.PCM...)
	a.SampleCount += len(chunk.PCM) / bytesPerSample
	return nil
}
