package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 1024, 2048} {
		assert.True(t, IsPowerOfTwo(n), "n=%d", n)
	}
	for _, n := range []int{-4, 0, 3, 6, 1000, 2047} {
		assert.False(t, IsPowerOfTwo(n), "n=%d", n)
	}
}

func TestColumnMeans(t *testing.T) {
	matrix := [][]float64{
		{1, 10},
		{3, 20},
		{5, 30},
	}

	assert.Equal(t, []float64{3, 20}, ColumnMeans(matrix, 2))
}

func TestColumnMeansEmptyMatrix(t *testing.T) {
	means := ColumnMeans(nil, 13)

	assert.Len(t, means, 13)
	for _, v := range means {
		assert.Zero(t, v)
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite([]float64{0, -1, 1e300}))
	assert.False(t, IsFinite([]float64{0, math.NaN()}))
	assert.False(t, IsFinite([]float64{math.Inf(-1)}))
}
