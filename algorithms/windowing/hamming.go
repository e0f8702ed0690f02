package windowing

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

// Hamming represents a symmetric Hamming window function
type Hamming struct {
	size         int
	coefficients []float64
}

// NewHamming creates a new Hamming window.
// Frames shorter than two samples have no defined window (N-1 would be zero).
func NewHamming(size int) (*Hamming, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: hamming window needs at least 2 samples, got %d", common.ErrInvalidFrameLength, size)
	}

	h := &Hamming{
		size: size,
	}
	h.generate()
	return h, nil
}

// generate creates Hamming window coefficients
func (h *Hamming) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size - 1)
	for i := range h.size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos((2*math.Pi*float64(i))/denominator)
	}
}

// Apply applies the window to a frame (creates new array).
// Windowed samples are kept at single precision, the precision of the
// capture buffers existing models were trained on.
func (h *Hamming) Apply(frame []float64) ([]float64, error) {
	if len(frame) != h.size {
		return nil, fmt.Errorf("%w: frame length (%d) doesn't match window size (%d)", common.ErrInvalidFrameLength, len(frame), h.size)
	}

	windowed := make([]float64, h.size)
	for i := range h.size {
		windowed[i] = float64(float32(frame[i] * h.coefficients[i]))
	}

	return windowed, nil
}

// ApplyHamming windows a frame of any length >= 2 in one call
func ApplyHamming(frame []float64) ([]float64, error) {
	h, err := NewHamming(len(frame))
	if err != nil {
		return nil, err
	}
	return h.Apply(frame)
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hamming) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}
