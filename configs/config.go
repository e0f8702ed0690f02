package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-mfcc/dataset"
	"github.com/RyanBlaney/sonido-mfcc/features/config"
	"github.com/RyanBlaney/sonido-mfcc/logging"
	"github.com/RyanBlaney/sonido-mfcc/transcode"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Feature extraction
	Extraction ExtractionConfig `mapstructure:"extraction"`

	// Audio decoding
	Decoder DecoderConfig `mapstructure:"decoder"`

	// Dataset building
	Dataset DatasetConfig `mapstructure:"dataset"`
}

// ExtractionConfig selects the feature layout
type ExtractionConfig struct {
	Preset string `mapstructure:"preset"`
}

// DecoderConfig contains audio decoding settings
type DecoderConfig struct {
	FFmpegPath       string        `mapstructure:"ffmpeg_path"`
	FFprobePath      string        `mapstructure:"ffprobe_path"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Downmix          string        `mapstructure:"downmix"`
	TargetSampleRate int           `mapstructure:"target_sample_rate"`
	MaxDuration      time.Duration `mapstructure:"max_duration"`
}

// DatasetConfig contains dataset builder settings
type DatasetConfig struct {
	Workers  int    `mapstructure:"workers"`
	Format   string `mapstructure:"format"`
	CacheDir string `mapstructure:"cache_dir"`
	ClassMap string `mapstructure:"class_map"`
}

// LoadConfig decodes the configuration held by v, after filling defaults
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}

	if _, err := cfg.Preset(); err != nil {
		return err
	}

	switch transcode.DownmixMode(cfg.Decoder.Downmix) {
	case transcode.DownmixFirstChannel, transcode.DownmixAverage:
	default:
		return fmt.Errorf("decoder downmix must be first or average, got %q", cfg.Decoder.Downmix)
	}

	if cfg.Decoder.Timeout < 0 {
		return fmt.Errorf("decoder timeout cannot be negative")
	}

	if cfg.Decoder.TargetSampleRate < 0 {
		return fmt.Errorf("decoder target sample rate cannot be negative")
	}

	if cfg.Dataset.Workers < 0 {
		return fmt.Errorf("dataset workers cannot be negative")
	}

	if cfg.Dataset.Format != "" {
		if _, err := dataset.ParseEncoding(cfg.Dataset.Format); err != nil {
			return err
		}
	}

	return nil
}

// Preset returns the configured extraction preset
func (c *Config) Preset() (config.Preset, error) {
	return config.ParsePreset(c.Extraction.Preset)
}

// Level returns the configured log level, falling back to info
func (c *Config) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	if c.Verbose && level > logging.DebugLevel {
		return logging.DebugLevel
	}
	return level
}

// DecoderConfig converts the decoder section for the transcode package
func (c *Config) DecoderConfig() *transcode.DecoderConfig {
	return &transcode.DecoderConfig{
		FFmpegPath:       c.Decoder.FFmpegPath,
		FFprobePath:      c.Decoder.FFprobePath,
		Timeout:          c.Decoder.Timeout,
		Downmix:          transcode.DownmixMode(c.Decoder.Downmix),
		TargetSampleRate: c.Decoder.TargetSampleRate,
		MaxDuration:      c.Decoder.MaxDuration,
	}
}
