//go:build !nocgo
// +build !nocgo

// Package audio provides audio playback for the speech pipeline.
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/wav"
	"github.com/voxsync/voxsync/tts"
)

// Format is the oto sample format matching the container contents.
const Format = oto.FormatSignedInt16LE

// containerHeaderSize is the WAV header length; sample bytes follow it.
const containerHeaderSize = 44

// watchInterval is how often the completion watcher polls the device.
const watchInterval = 10 * time.Millisecond

// positionReader wraps the sample bytes and tracks how many the device
// has consumed. Consumption runs ahead of audible playback by the
// device buffer; Position compensates with the unplayed buffer size.
type positionReader struct {
	reader   *bytes.Reader
	consumed atomic.Int64
}

func newPositionReader(data []byte) *positionReader {
	return &positionReader{reader: bytes.NewReader(data)}
}

func (r *positionReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.consumed.Add(int64(n))
	}
	return n, err
}

// Player plays WAV containers through the system audio device.
//
// The underlying device context is created on the first Play and is
// fixed at that sample rate for the life of the player; all engines in
// one session are expected to produce a single rate.
type Player struct {
	mu sync.Mutex

	ctx     *oto.Context
	ctxRate int

	device     *oto.Player
	reader     *positionReader
	sampleRate int
	playing    bool
	generation int
	done       chan struct{}
}

// NewPlayer creates an idle player. The audio device is not touched
// until the first Play.
func NewPlayer() *Player {
	done := make(chan struct{})
	close(done)
	return &Player{done: done}
}

// Play loads the container, begins playback, and returns the measured
// duration of the loaded audio.
func (p *Player) Play(audio *tts.Audio) (time.Duration, error) {
	if audio == nil || len(audio.Data) <= containerHeaderSize {
		return 0, tts.ErrNothingToPlay
	}

	dec := wav.NewDecoder(bytes.NewReader(audio.Data))
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%w: not a wav container", tts.ErrNothingToPlay)
	}
	measured, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("measure container duration: %w", err)
	}
	rate := int(dec.SampleRate)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return 0, tts.ErrAlreadyPlaying
	}
	if err := p.ensureContext(rate); err != nil {
		return 0, err
	}

	p.reader = newPositionReader(audio.Data[containerHeaderSize:])
	p.device = p.ctx.NewPlayer(p.reader)
	p.sampleRate = rate
	p.playing = true
	p.generation++
	p.done = make(chan struct{})

	p.device.Play()
	go p.watch(p.device, p.generation, p.done)

	log.Debug("playback started", "sampleRate", rate, "duration", measured)
	return measured, nil
}

// Stop halts playback and resets position.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return nil
	}
	return p.finishLocked()
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reader == nil || p.sampleRate <= 0 {
		return 0
	}
	played := p.reader.consumed.Load()
	if p.device != nil {
		played -= p.device.UnplayedBufferSize()
	}
	if played < 0 {
		played = 0
	}
	bytesPerSecond := int64(p.sampleRate) * 2
	return time.Duration(played) * time.Second / time.Duration(bytesPerSecond)
}

// IsPlaying reports whether audio is currently playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Done returns a channel closed when the current playback finishes or
// is stopped.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// ensureContext creates the device context on first use. oto allows a
// single context per process, so the rate is fixed by the first call.
func (p *Player) ensureContext(rate int) error {
	if rate <= 0 {
		return tts.ErrInvalidSampleRate
	}
	if p.ctx != nil {
		if rate != p.ctxRate {
			return fmt.Errorf("%w: audio device fixed at %d Hz, container is %d Hz",
				tts.ErrInvalidSampleRate, p.ctxRate, rate)
		}
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       Format,
	})
	if err != nil {
		return fmt.Errorf("create audio context: %w", err)
	}
	<-ready

	p.ctx = ctx
	p.ctxRate = rate
	return nil
}

// watch polls the device until it drains, then finalizes the session.
// The generation guard keeps a stale watcher from touching a newer
// playback after Stop/Play races.
func (p *Player) watch(device *oto.Player, generation int, done chan struct{}) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !device.IsPlaying() {
			break
		}
		select {
		case <-done:
			return
		default:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != generation || !p.playing {
		return
	}
	_ = p.finishLocked()
}

// finishLocked tears down the current device player. Callers hold p.mu.
func (p *Player) finishLocked() error {
	var err error
	if p.device != nil {
		err = p.device.Close()
		p.device = nil
	}
	p.playing = false
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	return err
}
