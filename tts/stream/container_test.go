package stream_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/voxsync/voxsync/tts"
	"github.com/voxsync/voxsync/tts/stream"
)

// TestBuildContainerHeader verifies the canonical header layout:
// 44 bytes, RIFF/WAVE magic, mono, 16-bit, little-endian sizes, with
// the raw sample bytes immediately after.
func TestBuildContainerHeader(t *testing.T) {
	samples := pcm(100, -100, 32767, -32768)
	assembled := &tts.AssembledAudio{
		PCM:         samples,
		SampleRate:  22050,
		SampleCount: 4,
	}

	audio, err := stream.BuildContainer(assembled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := audio.Data

	if len(data) != 44+len(samples) {
		t.Fatalf("container length = %d, want %d", len(data), 44+len(samples))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) {
		t.Errorf("missing RIFF magic: %q", data[0:4])
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(36+len(samples)) {
		t.Errorf("riff size = %d, want %d", got, 36+len(samples))
	}
	if !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Errorf("missing WAVE magic: %q", data[8:12])
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 22050 {
		t.Errorf("sample rate = %d, want 22050", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 22050*2 {
		t.Errorf("byte rate = %d, want %d", got, 22050*2)
	}
	if got := binary.LittleEndian.Uint16(data[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bit depth = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)) {
		t.Errorf("data size = %d, want %d", got, len(samples))
	}
	if !bytes.Equal(data[44:], samples) {
		t.Error("sample bytes do not follow the header verbatim")
	}
}

// TestBuildContainerRoundTrip decodes the container with the wav
// decoder and checks format and duration agree with the assembly.
func TestBuildContainerRoundTrip(t *testing.T) {
	assembled := &tts.AssembledAudio{
		PCM:         make([]byte, 16000*2), // one second of silence
		SampleRate:  16000,
		SampleCount: 16000,
	}

	audio, err := stream.BuildContainer(assembled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if audio.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", audio.Duration)
	}

	dec := wav.NewDecoder(bytes.NewReader(audio.Data))
	if !dec.IsValidFile() {
		t.Fatal("decoder rejected the container")
	}
	measured, err := dec.Duration()
	if err != nil {
		t.Fatalf("decoder duration: %v", err)
	}
	if measured != time.Second {
		t.Errorf("decoded duration = %v, want 1s", measured)
	}
}

// TestBuildContainerGuards verifies empty assemblies are rejected.
func TestBuildContainerGuards(t *testing.T) {
	if _, err := stream.BuildContainer(nil); !errors.Is(err, tts.ErrNoAudioProduced) {
		t.Errorf("nil assembly error = %v, want ErrNoAudioProduced", err)
	}
	noRate := &tts.AssembledAudio{PCM: pcm(1), SampleCount: 1}
	if _, err := stream.BuildContainer(noRate); !errors.Is(err, tts.ErrNoSampleRate) {
		t.Errorf("missing rate error = %v, want ErrNoSampleRate", err)
	}
}

// TestApplyGain verifies scaling and clamping at the 16-bit limits.
func TestApplyGain(t *testing.T) {
	a := &tts.AssembledAudio{PCM: pcm(1000, -1000, 30000, -30000), SampleRate: 16000, SampleCount: 4}
	stream.ApplyGain(a, 2.0)

	want := pcm(2000, -2000, 32767, -32768)
	if !bytes.Equal(a.PCM, want) {
		t.Errorf("gain-scaled pcm = %v, want %v", a.PCM, want)
	}
}

// TestApplyGainIdentity verifies gain of one and zero leave samples alone.
func TestApplyGainIdentity(t *testing.T) {
	original := pcm(123, -456)
	for _, gain := range []float64{0, 1} {
		a := &tts.AssembledAudio{PCM: append([]byte(nil), original...)}
		stream.ApplyGain(a, gain)
		if !bytes.Equal(a.PCM, original) {
			t.Errorf("gain %v changed samples", gain)
		}
	}
}
