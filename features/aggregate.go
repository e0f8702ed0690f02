package features

import (
	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

// Aggregate averages a feature matrix over time. An empty matrix yields a
// zero vector of the given width; the divisor is max(1, frames).
func Aggregate(frames [][]float64, width int) []float64 {
	return common.ColumnMeans(frames, width)
}
