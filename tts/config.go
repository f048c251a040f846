package tts

import (
	"fmt"
	"time"
)

// Config contains all speech pipeline configuration options.
type Config struct {
	// Global settings
	Engine string  `yaml:"engine" env:"VOXSYNC_ENGINE"`
	Gain   float64 `yaml:"gain" env:"VOXSYNC_GAIN"`

	// Synchronization settings
	UpdateRate time.Duration `yaml:"update_rate" env:"VOXSYNC_UPDATE_RATE"`

	// Visual settings (consumed by the CLI)
	HighlightColor string `yaml:"highlight_color" env:"VOXSYNC_HIGHLIGHT_COLOR"`

	// Engine-specific configurations
	Exec ExecConfig `yaml:"exec"`
	Mock MockConfig `yaml:"mock"`
}

// ExecConfig contains settings for the subprocess engine, which runs
// a piper-style command producing raw 16-bit mono PCM on stdout.
type ExecConfig struct {
	Command       string        `yaml:"command" env:"VOXSYNC_EXEC_COMMAND"`
	SampleRate    int           `yaml:"sample_rate" env:"VOXSYNC_EXEC_SAMPLE_RATE"`
	ChunkDuration time.Duration `yaml:"chunk_duration" env:"VOXSYNC_EXEC_CHUNK_DURATION"`
	Timeout       time.Duration `yaml:"timeout" env:"VOXSYNC_EXEC_TIMEOUT"`
}

// MockConfig contains settings for the deterministic mock engine.
type MockConfig struct {
	SampleRate     int           `yaml:"sample_rate" env:"VOXSYNC_MOCK_SAMPLE_RATE"`
	WordsPerMinute int           `yaml:"words_per_minute" env:"VOXSYNC_MOCK_WORDS_PER_MINUTE"`
	ChunkDelay     time.Duration `yaml:"chunk_delay" env:"VOXSYNC_MOCK_CHUNK_DELAY"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:         "mock",
		Gain:           1.0,
		UpdateRate:     50 * time.Millisecond,
		HighlightColor: "212",
		Exec: ExecConfig{
			SampleRate:    22050,
			ChunkDuration: 200 * time.Millisecond,
			Timeout:       45 * time.Second,
		},
		Mock: MockConfig{
			SampleRate:     22050,
			WordsPerMinute: 150,
			ChunkDelay:     10 * time.Millisecond,
		},
	}
}

// minUpdateRate is the floor for position polling; faster timers buy
// no extra precision from the audio clock.
const minUpdateRate = 15 * time.Millisecond

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Engine {
	case "mock", "exec":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
	if c.Gain < 0 {
		return fmt.Errorf("gain must not be negative, got %v", c.Gain)
	}
	if c.UpdateRate < minUpdateRate {
		c.UpdateRate = minUpdateRate
	}
	if c.Exec.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, c.Exec.SampleRate)
	}
	if c.Mock.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, c.Mock.SampleRate)
	}
	if c.Mock.WordsPerMinute <= 0 {
		return fmt.Errorf("words per minute must be positive, got %d", c.Mock.WordsPerMinute)
	}
	return nil
}
