package features

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
	"github.com/RyanBlaney/sonido-mfcc/algorithms/spectral"
	"github.com/RyanBlaney/sonido-mfcc/algorithms/temporal"
	"github.com/RyanBlaney/sonido-mfcc/features/config"
	"github.com/RyanBlaney/sonido-mfcc/logging"
)

func sineWave(sampleRate int, freq, seconds, amplitude float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

// ExtractorTestSuite runs the end-to-end extraction checks
type ExtractorTestSuite struct {
	suite.Suite
	cache    *spectral.FilterBankCache
	simple   *Extractor
	enhanced *Extractor
	tone     Waveform
}

func (suite *ExtractorTestSuite) SetupSuite() {
	suite.cache = spectral.NewFilterBankCache()

	var err error
	suite.simple, err = NewExtractor(config.PresetSimple,
		WithFilterBankCache(suite.cache),
		WithLogger(&logging.NoOpLogger{}))
	suite.Require().NoError(err)

	suite.enhanced, err = NewExtractor(config.PresetEnhanced,
		WithFilterBankCache(suite.cache),
		WithLogger(&logging.NoOpLogger{}))
	suite.Require().NoError(err)

	suite.tone = NewWaveform(44100, sineWave(44100, 440, 2, 0.5))
}

func (suite *ExtractorTestSuite) TestSimpleSineVector() {
	vector, err := suite.simple.Extract(suite.tone)
	suite.Require().NoError(err)

	suite.Len(vector, 13)
	suite.True(common.IsFinite(vector))
	suite.NoError(ValidateDimension(vector, suite.simple.Dimension()))
}

func (suite *ExtractorTestSuite) TestEnhancedSineVector() {
	vector, err := suite.enhanced.Extract(suite.tone)
	suite.Require().NoError(err)

	suite.Len(vector, 60)
	suite.True(common.IsFinite(vector))
	suite.NotEqual(vector[0:20], vector[20:40])
	suite.NotEqual(vector[0:20], vector[40:60])
}

func (suite *ExtractorTestSuite) TestAnalysisShape() {
	analysis, err := suite.enhanced.Analyze(suite.tone)
	suite.Require().NoError(err)
	suite.NoError(analysis.Err())

	// 88200 samples, frames start while start < 88200-2048
	suite.Equal(169, analysis.FrameCount)
	suite.Len(analysis.Static, 169)
	suite.Len(analysis.Frames, 169)
	for _, row := range analysis.Static {
		suite.Len(row, 20)
	}
	for _, row := range analysis.Frames {
		suite.Len(row, 60)
	}
	suite.Equal(config.PresetEnhanced, analysis.Preset)
	suite.Equal(44100, analysis.SampleRate)
}

func (suite *ExtractorTestSuite) TestEnhancedStaticBlockIsCentred() {
	analysis, err := suite.enhanced.Analyze(suite.tone)
	suite.Require().NoError(err)

	// Normalized coefficients average to zero over time
	for i := range 20 {
		suite.InDelta(0.0, analysis.Vector[i], 1e-9)
	}
}

func (suite *ExtractorTestSuite) TestEnhancedFrameLayout() {
	analysis, err := suite.enhanced.Analyze(suite.tone)
	suite.Require().NoError(err)

	normalized := common.CepstralMeanNormalize(analysis.Static)
	deltas := temporal.Delta(normalized, temporal.DefaultDeltaWindow)
	accel := temporal.DeltaDelta(normalized, temporal.DefaultDeltaWindow)

	suite.Require().Len(analysis.Frames, len(normalized))
	for t, row := range analysis.Frames {
		suite.Equal(normalized[t], row[0:20])
		suite.Equal(deltas[t], row[20:40])
		suite.Equal(accel[t], row[40:60])
	}
}

func (suite *ExtractorTestSuite) TestRisingAmplitudeGivesPositiveEnergyDelta() {
	samples := sineWave(44100, 440, 2, 1)
	for i := range samples {
		samples[i] *= 0.05 + 0.95*float64(i)/float64(len(samples))
	}

	vector, err := suite.enhanced.Extract(NewWaveform(44100, samples))
	suite.Require().NoError(err)

	// Coefficient 0 is the sum of log filter energies, so it grows with amplitude
	suite.Greater(vector[20], 0.0)
}

func (suite *ExtractorTestSuite) TestShortAudioYieldsZeroVector() {
	short := NewWaveform(44100, sineWave(44100, 440, 100.0/44100, 0.5))
	suite.Require().Len(short.Samples, 100)

	for _, extractor := range []*Extractor{suite.simple, suite.enhanced} {
		analysis, err := extractor.Analyze(short)
		suite.Require().NoError(err)
		suite.ErrorIs(analysis.Err(), ErrInsufficientAudio)
		suite.Equal(0, analysis.FrameCount)
		suite.Empty(analysis.Static)
		suite.Equal(make([]float64, extractor.Dimension()), analysis.Vector)

		vector, err := extractor.Extract(short)
		suite.Require().NoError(err)
		suite.Equal(make([]float64, extractor.Dimension()), vector)
	}
}

func (suite *ExtractorTestSuite) TestExactlyOneFrameLength() {
	// A waveform of exactly FRAME_SIZE samples produces no frames
	analysis, err := suite.simple.Analyze(NewWaveform(44100, make([]float64, 2048)))
	suite.Require().NoError(err)
	suite.Equal(0, analysis.FrameCount)

	analysis, err = suite.simple.Analyze(NewWaveform(44100, make([]float64, 2049)))
	suite.Require().NoError(err)
	suite.Equal(1, analysis.FrameCount)
}

func (suite *ExtractorTestSuite) TestSilenceHitsLogFloor() {
	vector, err := suite.simple.Extract(NewWaveform(44100, make([]float64, 44100)))
	suite.Require().NoError(err)

	// Every filter energy is zero, so c0 = 26 * ln(1e-8) and the rest vanish
	suite.InDelta(26*math.Log(1e-8), vector[0], 1e-9)
	for _, v := range vector[1:] {
		suite.InDelta(0.0, v, 1e-9)
	}
}

func (suite *ExtractorTestSuite) TestInvalidSampleRate() {
	for _, rate := range []int{0, -44100} {
		_, err := suite.simple.Extract(NewWaveform(rate, make([]float64, 4096)))
		suite.ErrorIs(err, ErrInvalidParameters)
	}
}

func (suite *ExtractorTestSuite) TestInputNotModified() {
	original := slices.Clone(suite.tone.Samples)
	_, err := suite.enhanced.Extract(suite.tone)
	suite.Require().NoError(err)
	suite.Equal(original, suite.tone.Samples)
}

func (suite *ExtractorTestSuite) TestDeterministic() {
	first, err := suite.enhanced.Extract(suite.tone)
	suite.Require().NoError(err)
	second, err := suite.enhanced.Extract(suite.tone)
	suite.Require().NoError(err)
	suite.Equal(first, second)
}

func (suite *ExtractorTestSuite) TestSharedFilterBanks() {
	_, err := suite.simple.Extract(suite.tone)
	suite.Require().NoError(err)
	_, err = suite.enhanced.Extract(suite.tone)
	suite.Require().NoError(err)
	builds := suite.cache.Builds()
	size := suite.cache.Len()

	_, err = suite.simple.Extract(suite.tone)
	suite.Require().NoError(err)
	_, err = suite.enhanced.Extract(suite.tone)
	suite.Require().NoError(err)
	suite.Equal(builds, suite.cache.Builds())
	suite.Equal(size, suite.cache.Len())
}

func (suite *ExtractorTestSuite) TestExtractBatch() {
	waveforms := []Waveform{
		suite.tone,
		NewWaveform(22050, sineWave(22050, 880, 1, 0.3)),
	}

	vectors, err := suite.simple.ExtractBatch(waveforms)
	suite.Require().NoError(err)
	suite.Require().Len(vectors, 2)
	for _, v := range vectors {
		suite.Len(v, 13)
	}

	single, err := suite.simple.Extract(waveforms[1])
	suite.Require().NoError(err)
	suite.Equal(single, vectors[1])

	_, err = suite.simple.ExtractBatch([]Waveform{suite.tone, NewWaveform(0, nil)})
	suite.ErrorIs(err, ErrInvalidParameters)
}

func TestExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func TestNewExtractorRejectsUnknownPreset(t *testing.T) {
	_, err := NewExtractor(config.Preset("stereo"))
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestNewExtractorWithConfig(t *testing.T) {
	cfg, err := config.ConfigForPreset(config.PresetSimple)
	require.NoError(t, err)
	cfg.FrameSize = 1024
	cfg.HopSize = 256

	extractor, err := NewExtractorWithConfig(cfg, WithLogger(&logging.NoOpLogger{}))
	require.NoError(t, err)

	analysis, err := extractor.Analyze(NewWaveform(16000, sineWave(16000, 440, 1, 0.5)))
	require.NoError(t, err)
	assert.Equal(t, FrameCount(16000, 1024, 256), analysis.FrameCount)
	assert.Len(t, analysis.Vector, 13)

	cfg.FrameSize = 1000
	_, err = NewExtractorWithConfig(cfg)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestValidateDimension(t *testing.T) {
	assert.NoError(t, ValidateDimension(make([]float64, 60), 60))
	assert.ErrorIs(t, ValidateDimension(make([]float64, 13), 60), ErrFeatureDimensionMismatch)
}
