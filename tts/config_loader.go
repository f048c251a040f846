package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads speech configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("speech.engine") {
		cfg.Engine = viper.GetString("speech.engine")
	}
	if viper.IsSet("speech.gain") {
		cfg.Gain = viper.GetFloat64("speech.gain")
	}
	if viper.IsSet("speech.update_rate") {
		if d, err := time.ParseDuration(viper.GetString("speech.update_rate")); err == nil {
			cfg.UpdateRate = d
		}
	}
	if viper.IsSet("speech.highlight_color") {
		cfg.HighlightColor = viper.GetString("speech.highlight_color")
	}

	cfg.Exec = loadExecConfig(cfg.Exec)
	cfg.Mock = loadMockConfig(cfg.Mock)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid speech configuration: %w", err)
	}
	return cfg, nil
}

// loadExecConfig loads subprocess engine configuration from Viper.
func loadExecConfig(cfg ExecConfig) ExecConfig {
	if viper.IsSet("speech.exec.command") {
		cfg.Command = viper.GetString("speech.exec.command")
	}
	if viper.IsSet("speech.exec.sample_rate") {
		cfg.SampleRate = viper.GetInt("speech.exec.sample_rate")
	}
	if viper.IsSet("speech.exec.chunk_duration") {
		if d, err := time.ParseDuration(viper.GetString("speech.exec.chunk_duration")); err == nil {
			cfg.ChunkDuration = d
		}
	}
	if viper.IsSet("speech.exec.timeout") {
		if d, err := time.ParseDuration(viper.GetString("speech.exec.timeout")); err == nil {
			cfg.Timeout = d
		}
	}
	return cfg
}

// loadMockConfig loads mock engine configuration from Viper.
func loadMockConfig(cfg MockConfig) MockConfig {
	if viper.IsSet("speech.mock.sample_rate") {
		cfg.SampleRate = viper.GetInt("speech.mock.sample_rate")
	}
	if viper.IsSet("speech.mock.words_per_minute") {
		cfg.WordsPerMinute = viper.GetInt("speech.mock.words_per_minute")
	}
	if viper.IsSet("speech.mock.chunk_delay") {
		if d, err := time.ParseDuration(viper.GetString("speech.mock.chunk_delay")); err == nil {
			cfg.ChunkDelay = d
		}
	}
	return cfg
}

// SetDefaults registers default values in Viper for speech configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("speech.engine", defaults.Engine)
	viper.SetDefault("speech.gain", defaults.Gain)
	viper.SetDefault("speech.update_rate", defaults.UpdateRate.String())
	viper.SetDefault("speech.highlight_color", defaults.HighlightColor)

	viper.SetDefault("speech.exec.command", defaults.Exec.Command)
	viper.SetDefault("speech.exec.sample_rate", defaults.Exec.SampleRate)
	viper.SetDefault("speech.exec.chunk_duration", defaults.Exec.ChunkDuration.String())
	viper.SetDefault("speech.exec.timeout", defaults.Exec.Timeout.String())

	viper.SetDefault("speech.mock.sample_rate", defaults.Mock.SampleRate)
	viper.SetDefault("speech.mock.words_per_minute", defaults.Mock.WordsPerMinute)
	viper.SetDefault("speech.mock.chunk_delay", defaults.Mock.ChunkDelay.String())
}
