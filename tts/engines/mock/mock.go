// Package mock provides a deterministic speech engine for development and
// tests. It synthesizes one audio chunk per word, pacing the output by the
// configured words-per-minute rate, and tags each chunk with the rune offset
// of the word it covers.
package mock

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/voxsync/voxsync/tts"
	"github.com/voxsync/voxsync/tts/segment"
)

const toneAmplitude = 8000

// Engine is an offline speech engine that generates a short tone per word.
type Engine struct {
	cfg tts.MockConfig

	failAfter int
	failErr   error
	silent    bool
}

// New creates a mock engine from cfg. Zero or negative config values fall
// back to the defaults in tts.DefaultConfig.
func New(cfg tts.MockConfig) *Engine {
	def := tts.DefaultConfig().Mock
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = def.WordsPerMinute
	}
	return &Engine{cfg: cfg, failAfter: -1}
}

// FailAfter makes Synthesize report err after emitting n chunks. Used by
// tests to exercise mid-stream failure handling.
func (e *Engine) FailAfter(n int, err error) {
	e.failAfter = n
	e.failErr = err
}

// Silence makes Synthesize close its chunk channel without producing any
// audio.
func (e *Engine) Silence() {
	e.silent = true
}

// Name reports the engine identifier.
func (e *Engine) Name() string { return "mock" }

// Available always reports true; the mock engine has no external
// dependencies.
func (e *Engine) Available() bool { return true }

// Synthesize streams one chunk per word of text. The first chunk carries the
// configured sample rate; later chunks leave it zero. Each chunk's source
// text offset is the rune offset of the word it voices.
func (e *Engine) Synthesize(ctx context.Context, text string) (<-chan tts.AudioChunk, <-chan error) {
	chunks := make(chan tts.AudioChunk)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		if e.silent {
			return
		}

		words := segment.Words(text)
		perWord := time.Minute / time.Duration(e.cfg.WordsPerMinute)
		samples := int(perWord.Seconds() * float64(e.cfg.SampleRate))

		for i, w := range words {
			if e.failAfter >= 0 && i >= e.failAfter {
				errs <- e.failErr
				return
			}
			if e.cfg.ChunkDelay > 0 {
				select {
				case <-time.After(e.cfg.ChunkDelay):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
			chunk := tts.AudioChunk{
				PCM:              tone(i, samples, e.cfg.SampleRate),
				SourceTextOffset: w.Start,
			}
			if i == 0 {
				chunk.SampleRate = e.cfg.SampleRate
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return chunks, errs
}

// tone renders a sine wave whose pitch steps with the word index, so
// consecutive words are audibly distinct.
func tone(word, samples, rate int) []byte {
	freq := 220.0 + 40.0*float64(word%8)
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := int16(toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}
