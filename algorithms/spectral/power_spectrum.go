package spectral

import (
	"fmt"
)

// PowerSpectrum computes the one-sided power spectrum of a frame spectrum
type PowerSpectrum struct {
	// No state needed - stateless calculation
}

// NewPowerSpectrum creates a new power spectrum calculator
func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute returns (re^2 + im^2) / nfft for bins 0..nfft/2 inclusive
func (ps *PowerSpectrum) Compute(spectrum *Spectrum, nfft int) ([]float64, error) {
	if spectrum == nil || nfft <= 0 {
		return nil, fmt.Errorf("invalid spectrum for power computation")
	}

	numBins := nfft/2 + 1
	if spectrum.Len() < numBins || len(spectrum.Imag) < numBins {
		return nil, fmt.Errorf("spectrum has %d bins, need %d", spectrum.Len(), numBins)
	}

	power := make([]float64, numBins)
	for k := range numBins {
		re := spectrum.Real[k]
		im := spectrum.Imag[k]
		power[k] = (re*re + im*im) / float64(nfft)
	}

	return power, nil
}
