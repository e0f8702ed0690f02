package spectral

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

// Spectrum holds the complex spectrum of one frame as separate real and
// imaginary parts, indexed by natural frequency bin order
type Spectrum struct {
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag"`
}

// Len returns the number of frequency bins
func (s *Spectrum) Len() int {
	return len(s.Real)
}

// FFT provides a recursive radix-2 Fast Fourier Transform for real input
type FFT struct {
	// No state needed - twiddles are recomputed per combine step
}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the spectrum of a real-valued sequence whose length is a
// power of two. An empty input yields empty spectra.
func (f *FFT) Compute(x []float64) (*Spectrum, error) {
	n := len(x)
	if n == 0 {
		return &Spectrum{Real: []float64{}, Imag: []float64{}}, nil
	}

	if !common.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: %d is not a power of two", common.ErrInvalidInputLength, n)
	}

	re, im := radix2(x)
	return &Spectrum{Real: re, Imag: im}, nil
}

// radix2 is the decimation-in-time recursion. len(x) must be a power of two;
// depth is log2(len(x)).
func radix2(x []float64) ([]float64, []float64) {
	n := len(x)
	if n == 1 {
		return []float64{x[0]}, []float64{0}
	}

	half := n / 2

	// Separate even and odd indexed samples
	even := make([]float64, half)
	odd := make([]float64, half)
	for i := range half {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}

	evenRe, evenIm := radix2(even)
	oddRe, oddIm := radix2(odd)

	re := make([]float64, n)
	im := make([]float64, n)

	// Combine with twiddle factors e^(-2*pi*i*k/n)
	for k := range half {
		angle := (-2 * math.Pi * float64(k)) / float64(n)
		cos := math.Cos(angle)
		sin := math.Sin(angle)

		tRe := oddRe[k]*cos - oddIm[k]*sin
		tIm := oddRe[k]*sin + oddIm[k]*cos

		re[k] = evenRe[k] + tRe
		im[k] = evenIm[k] + tIm

		re[k+half] = evenRe[k] - tRe
		im[k+half] = evenIm[k] - tIm
	}

	return re, im
}
