package common

import (
	"gonum.org/v1/gonum/floats"
)

// CepstralMeanNormalize removes the per-coefficient temporal mean from a
// feature matrix. The input is not modified; an empty matrix is returned
// unchanged.
func CepstralMeanNormalize(frames [][]float64) [][]float64 {
	if len(frames) == 0 {
		return frames
	}

	width := Width(frames)

	// Compute mean for each coefficient
	means := make([]float64, width)
	for _, frame := range frames {
		floats.Add(means, frame)
	}
	for i := range means {
		means[i] /= float64(len(frames))
	}

	// Subtract mean from each frame
	normalized := make([][]float64, len(frames))
	for t, frame := range frames {
		normalized[t] = make([]float64, width)
		floats.SubTo(normalized[t], frame, means)
	}

	return normalized
}
