package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/voxsync/voxsync/tts"
)

// containerHeaderSize is the canonical RIFF/WAVE header length for
// uncompressed PCM: every audio subsystem can decode it without a codec.
const containerHeaderSize = 44

// BuildContainer wraps the assembled samples in a WAV container: the
// 44-byte header (mono, 16-bit, the resolved sample rate) followed
// immediately by the raw sample bytes.
func BuildContainer(a *tts.AssembledAudio) (*tts.Audio, error) {
	if a == nil || a.SampleCount == 0 {
		return nil, tts.ErrNoAudioProduced
	}
	if a.SampleRate <= 0 {
		return nil, tts.ErrNoSampleRate
	}

	samples := make([]int, a.SampleCount)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(a.PCM[i*bytesPerSample:])))
	}
	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: a.SampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}

	ws := newMemWriteSeeker(containerHeaderSize + len(a.PCM))
	enc := wav.NewEncoder(ws, a.SampleRate, 16, 1, 1)
	if err := enc.Write(buffer); err != nil {
		return nil, fmt.Errorf("write wav container: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	return &tts.Audio{
		Data:       ws.Bytes(),
		SampleRate: a.SampleRate,
		Duration:   a.Duration(),
	}, nil
}

// ApplyGain scales every sample by a linear gain factor, clamping to
// the 16-bit range. A gain of zero or one leaves the samples unchanged.
func ApplyGain(a *tts.AssembledAudio, gain float64) {
	if a == nil || gain == 0 || gain == 1 {
		return
	}
	for i := 0; i < len(a.PCM); i += bytesPerSample {
		sample := float64(int16(binary.LittleEndian.Uint16(a.PCM[i:])))
		scaled := sample * gain
		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}
		binary.LittleEndian.PutUint16(a.PCM[i:], uint16(int16(scaled)))
	}
}

// memWriteSeeker is an in-memory io.WriteSeeker. The wav encoder seeks
// back into the header to patch chunk sizes on Close, which rules out
// a plain bytes.Buffer.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func newMemWriteSeeker(capacity int) *memWriteSeeker {
	return &memWriteSeeker{buf: make([]byte, 0, capacity)}
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	if need := m.pos + len(p); need > len(m.buf) {
		if need > cap(m.buf) {
			grown := make([]byte, len(m.buf), need*2)
			copy(grown, m.buf)
			m.buf = grown
		}
		m.buf = m.buf[:need]
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("negative seek position %d", abs)
	}
	m.pos = int(abs)
	return abs, nil
}

// Bytes returns the written container.
func (m *memWriteSeeker) Bytes() []byte {
	return m.buf
}
