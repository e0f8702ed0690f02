package config

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

// Preset selects one of the supported feature layouts
type Preset string

const (
	// PresetSimple yields 13 mean MFCCs from 26 mel filters
	PresetSimple Preset = "simple"
	// PresetEnhanced yields 60 values: 20 normalized MFCCs, 20 deltas and
	// 20 delta-deltas, each averaged over time
	PresetEnhanced Preset = "enhanced"
)

// Presets lists every supported preset
func Presets() []Preset {
	return []Preset{PresetSimple, PresetEnhanced}
}

// ParsePreset resolves a preset name, case-insensitively
func ParsePreset(name string) (Preset, error) {
	switch Preset(strings.ToLower(strings.TrimSpace(name))) {
	case PresetSimple:
		return PresetSimple, nil
	case PresetEnhanced:
		return PresetEnhanced, nil
	default:
		return "", fmt.Errorf("%w: unknown preset %q (want simple or enhanced)", common.ErrInvalidParameters, name)
	}
}

// FeatureConfig holds the frame pipeline parameters for one preset
type FeatureConfig struct {
	Preset Preset `json:"preset" yaml:"preset"`

	// Framing
	FrameSize int `json:"frame_size" yaml:"frame_size"` // samples per frame, also the FFT size
	HopSize   int `json:"hop_size" yaml:"hop_size"`     // stride between frame starts

	// Cepstral analysis
	MFCCCoefficients int     `json:"mfcc_coefficients" yaml:"mfcc_coefficients"`
	NumMelFilters    int     `json:"num_mel_filters" yaml:"num_mel_filters"`
	LowFreq          float64 `json:"low_freq" yaml:"low_freq"`
	HighFreq         float64 `json:"high_freq" yaml:"high_freq"` // 0 means sampleRate/2

	// Temporal post-processing (cepstral mean normalization, delta, delta-delta)
	EnableTemporalFeatures bool `json:"enable_temporal_features" yaml:"enable_temporal_features"`
	DeltaWindow            int  `json:"delta_window" yaml:"delta_window"`
}

// ConfigForPreset returns the fixed parameter set behind a preset
func ConfigForPreset(preset Preset) (*FeatureConfig, error) {
	switch preset {
	case PresetSimple:
		return &FeatureConfig{
			Preset:           PresetSimple,
			FrameSize:        2048,
			HopSize:          512,
			MFCCCoefficients: 13,
			NumMelFilters:    26,
			LowFreq:          0,
		}, nil

	case PresetEnhanced:
		return &FeatureConfig{
			Preset:                 PresetEnhanced,
			FrameSize:              2048,
			HopSize:                512,
			MFCCCoefficients:       20,
			NumMelFilters:          40,
			LowFreq:                0,
			EnableTemporalFeatures: true,
			DeltaWindow:            2,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown preset %q", common.ErrInvalidParameters, preset)
	}
}

// DefaultFeatureConfig returns the enhanced preset, the layout used for prediction
func DefaultFeatureConfig() *FeatureConfig {
	cfg, _ := ConfigForPreset(PresetEnhanced)
	return cfg
}

// OutputDimension returns the width of the aggregated feature vector
func (c *FeatureConfig) OutputDimension() int {
	if c.EnableTemporalFeatures {
		return 3 * c.MFCCCoefficients
	}
	return c.MFCCCoefficients
}

// HighFreqFor resolves the upper filter bank edge for a sample rate
func (c *FeatureConfig) HighFreqFor(sampleRate int) float64 {
	if c.HighFreq > 0 {
		return c.HighFreq
	}
	return float64(sampleRate) / 2
}

// Validate checks the parameters independently of any sample rate
func (c *FeatureConfig) Validate() error {
	switch {
	case c.FrameSize < 2 || !common.IsPowerOfTwo(c.FrameSize):
		return fmt.Errorf("%w: frame size must be a power of two >= 2, got %d", common.ErrInvalidParameters, c.FrameSize)
	case c.HopSize <= 0:
		return fmt.Errorf("%w: hop size must be positive, got %d", common.ErrInvalidParameters, c.HopSize)
	case c.MFCCCoefficients <= 0:
		return fmt.Errorf("%w: coefficient count must be positive, got %d", common.ErrInvalidParameters, c.MFCCCoefficients)
	case c.NumMelFilters <= 0:
		return fmt.Errorf("%w: mel filter count must be positive, got %d", common.ErrInvalidParameters, c.NumMelFilters)
	case c.LowFreq < 0:
		return fmt.Errorf("%w: low frequency must be non-negative, got %g", common.ErrInvalidParameters, c.LowFreq)
	case c.EnableTemporalFeatures && c.DeltaWindow < 0:
		return fmt.Errorf("%w: delta window must be non-negative, got %d", common.ErrInvalidParameters, c.DeltaWindow)
	}
	return nil
}
