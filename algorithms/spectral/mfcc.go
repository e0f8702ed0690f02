package spectral

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
	"github.com/RyanBlaney/sonido-mfcc/algorithms/windowing"
)

// logEnergyFloor keeps ln() finite for silent filters
const logEnergyFloor = 1e-8

// MFCC computes Mel-Frequency Cepstral Coefficients for single frames
type MFCC struct {
	numCoefficients int
	frameSize       int

	// Internal components
	window        *windowing.Hamming
	fft           *FFT
	powerSpectrum *PowerSpectrum
	filterBank    *FilterBank
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int     `json:"num_coefficients"` // Number of MFCC coefficients (default: 13)
	NumMelFilters   int     `json:"num_mel_filters"`  // Number of mel filter bank filters (default: 26)
	FrameSize       int     `json:"frame_size"`       // Frame and FFT length, power of two (default: 2048)
	LowFreq         float64 `json:"low_freq"`         // Low frequency bound (default: 0)
	HighFreq        float64 `json:"high_freq"`        // High frequency bound (default: sampleRate/2)
}

// MFCCResult contains MFCC computation results for one frame
type MFCCResult struct {
	MFCC        []float64 `json:"mfcc"`         // MFCC coefficients
	LogMelBands []float64 `json:"log_mel_bands"` // ln(filter energy + 1e-8) per filter
}

// NewMFCCWithParams creates a new MFCC computer with custom parameters,
// drawing its filter bank from cache
func NewMFCCWithParams(sampleRate int, params MFCCParams, cache *FilterBankCache) (*MFCC, error) {
	// Set defaults
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = 13
	}
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = 26
	}
	if params.FrameSize <= 0 {
		params.FrameSize = 2048
	}
	if params.HighFreq <= 0 {
		params.HighFreq = float64(sampleRate) / 2.0
	}
	if cache == nil {
		cache = DefaultFilterBankCache()
	}

	if !common.IsPowerOfTwo(params.FrameSize) {
		return nil, fmt.Errorf("%w: frame size %d is not a power of two", common.ErrInvalidParameters, params.FrameSize)
	}

	window, err := windowing.NewHamming(params.FrameSize)
	if err != nil {
		return nil, err
	}

	filterBank, err := cache.Get(FilterBankKey{
		SampleRate: sampleRate,
		NumFilters: params.NumMelFilters,
		NFFT:       params.FrameSize,
		LowFreq:    params.LowFreq,
		HighFreq:   params.HighFreq,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mel filter bank: %w", err)
	}

	return &MFCC{
		numCoefficients: params.NumCoefficients,
		frameSize:       params.FrameSize,
		window:          window,
		fft:             NewFFT(),
		powerSpectrum:   NewPowerSpectrum(),
		filterBank:      filterBank,
	}, nil
}

// Compute calculates MFCC coefficients for one raw (unwindowed) frame:
// Hamming window, FFT, power spectrum, mel filter bank, log, DCT.
func (mfcc *MFCC) Compute(frame []float64) (*MFCCResult, error) {
	windowed, err := mfcc.window.Apply(frame)
	if err != nil {
		return nil, err
	}

	spectrum, err := mfcc.fft.Compute(windowed)
	if err != nil {
		return nil, err
	}

	power, err := mfcc.powerSpectrum.Compute(spectrum, mfcc.frameSize)
	if err != nil {
		return nil, err
	}

	// Apply mel filter bank and take log energies
	bands := mfcc.filterBank.Apply(power)
	for i, energy := range bands {
		bands[i] = math.Log(energy + logEnergyFloor)
	}

	return &MFCCResult{
		MFCC:        DCT(bands, mfcc.numCoefficients),
		LogMelBands: bands,
	}, nil
}

// GetFrameSize returns the frame length this computer accepts
func (mfcc *MFCC) GetFrameSize() int {
	return mfcc.frameSize
}
