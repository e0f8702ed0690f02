package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Basic numeric helpers used across algorithms using gonum for robustness

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// ColumnMeans returns the per-column mean of a row-major matrix.
// The result always has the requested width; rows of any other width are
// ignored. Sums are divided by max(1, rows) so an empty matrix yields zeros.
func ColumnMeans(matrix [][]float64, width int) []float64 {
	means := make([]float64, width)
	rows := 0
	for _, row := range matrix {
		if len(row) != width {
			continue
		}
		floats.Add(means, row)
		rows++
	}

	count := float64(max(1, rows))
	for i := range means {
		means[i] /= count
	}

	return means
}

// IsFinite reports whether every value is neither NaN nor infinite
func IsFinite(data []float64) bool {
	if floats.HasNaN(data) {
		return false
	}
	for _, v := range data {
		if math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Width returns the common row length of a matrix, or 0 when it is empty
func Width(matrix [][]float64) int {
	if len(matrix) == 0 {
		return 0
	}
	return len(matrix[0])
}
