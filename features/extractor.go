package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
	"github.com/RyanBlaney/sonido-mfcc/algorithms/spectral"
	"github.com/RyanBlaney/sonido-mfcc/algorithms/temporal"
	"github.com/RyanBlaney/sonido-mfcc/features/config"
	"github.com/RyanBlaney/sonido-mfcc/logging"
)

// Analysis holds every intermediate of one extraction
type Analysis struct {
	Preset     config.Preset `json:"preset"`
	SampleRate int           `json:"sample_rate"`
	FrameCount int           `json:"frame_count"`

	// Static holds the per-frame MFCCs before any temporal processing
	Static [][]float64 `json:"static"`

	// Frames is the matrix that gets aggregated: Static for the simple
	// preset, [normalized ‖ delta ‖ delta-delta] rows for the enhanced one
	Frames [][]float64 `json:"frames"`

	Vector []float64 `json:"vector"`
}

// Err reports ErrInsufficientAudio when the waveform was too short for a
// single frame. The vector is still valid (all zeros) in that case.
func (a *Analysis) Err() error {
	if a.FrameCount == 0 {
		return fmt.Errorf("%w: no complete frame in waveform", ErrInsufficientAudio)
	}
	return nil
}

// Extractor turns waveforms into fixed-length MFCC feature vectors.
// An Extractor is safe for concurrent use.
type Extractor struct {
	config *config.FeatureConfig
	cache  *spectral.FilterBankCache
	logger logging.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLogger replaces the extractor's logger
func WithLogger(logger logging.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFilterBankCache draws filter banks from cache instead of the shared default
func WithFilterBankCache(cache *spectral.FilterBankCache) Option {
	return func(e *Extractor) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// NewExtractor creates an extractor for one of the fixed presets
func NewExtractor(preset config.Preset, opts ...Option) (*Extractor, error) {
	cfg, err := config.ConfigForPreset(preset)
	if err != nil {
		return nil, err
	}
	return NewExtractorWithConfig(cfg, opts...)
}

// NewExtractorWithConfig creates an extractor from explicit parameters
func NewExtractorWithConfig(cfg *config.FeatureConfig, opts ...Option) (*Extractor, error) {
	if cfg == nil {
		cfg = config.DefaultFeatureConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		config: cfg,
		cache:  spectral.DefaultFilterBankCache(),
		logger: logging.WithFields(logging.Fields{
			"component": "mfcc_extractor",
			"preset":    cfg.Preset,
		}),
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Config returns the extractor's parameters
func (e *Extractor) Config() *config.FeatureConfig {
	return e.config
}

// Dimension returns the length of every vector this extractor produces
func (e *Extractor) Dimension() int {
	return e.config.OutputDimension()
}

// Extract returns the aggregated feature vector for a waveform. Audio
// shorter than one frame yields a zero vector, not an error.
func (e *Extractor) Extract(w Waveform) ([]float64, error) {
	analysis, err := e.Analyze(w)
	if err != nil {
		return nil, err
	}
	return analysis.Vector, nil
}

// Analyze runs the full pipeline and keeps the intermediate matrices
func (e *Extractor) Analyze(w Waveform) (*Analysis, error) {
	if w.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameters, w.SampleRate)
	}

	logger := e.logger.WithFields(logging.Fields{
		"function":    "Analyze",
		"sample_rate": w.SampleRate,
		"samples":     len(w.Samples),
	})

	mfcc, err := spectral.NewMFCCWithParams(w.SampleRate, spectral.MFCCParams{
		NumCoefficients: e.config.MFCCCoefficients,
		NumMelFilters:   e.config.NumMelFilters,
		FrameSize:       e.config.FrameSize,
		LowFreq:         e.config.LowFreq,
		HighFreq:        e.config.HighFreqFor(w.SampleRate),
	}, e.cache)
	if err != nil {
		logger.Error(err, "Failed to create MFCC computer")
		return nil, err
	}

	static, err := computeStaticFrames(w.Samples, mfcc, e.config.HopSize)
	if err != nil {
		logger.Error(err, "Failed to compute MFCC frames")
		return nil, err
	}

	frames := static
	if e.config.EnableTemporalFeatures {
		frames = e.temporalFrames(static)
	}

	analysis := &Analysis{
		Preset:     e.config.Preset,
		SampleRate: w.SampleRate,
		FrameCount: len(static),
		Static:     static,
		Frames:     frames,
		Vector:     Aggregate(frames, e.Dimension()),
	}

	if len(static) == 0 {
		logger.Warn("Waveform shorter than one frame, returning zero vector", logging.Fields{
			"frame_size": e.config.FrameSize,
		})
	} else {
		logger.Debug("MFCC extraction completed", logging.Fields{
			"frames":    analysis.FrameCount,
			"dimension": len(analysis.Vector),
		})
	}

	if !common.IsFinite(analysis.Vector) {
		logger.Warn("Feature vector contains non-finite values")
	}

	return analysis, nil
}

// temporalFrames builds [normalized ‖ delta ‖ delta-delta] rows. Deltas are
// taken over the normalized coefficients.
func (e *Extractor) temporalFrames(static [][]float64) [][]float64 {
	normalized := common.CepstralMeanNormalize(static)
	deltas := temporal.Delta(normalized, e.config.DeltaWindow)
	deltaDeltas := temporal.DeltaDelta(normalized, e.config.DeltaWindow)
	return temporal.Stack(normalized, deltas, deltaDeltas)
}

// ExtractBatch extracts one vector per waveform, in order. The first
// failure aborts the batch.
func (e *Extractor) ExtractBatch(waveforms []Waveform) ([][]float64, error) {
	vectors := make([][]float64, len(waveforms))
	for i, w := range waveforms {
		vector, err := e.Extract(w)
		if err != nil {
			return nil, fmt.Errorf("waveform %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}
