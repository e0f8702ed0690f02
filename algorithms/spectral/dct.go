package spectral

import (
	"math"
)

// DCT computes an unnormalized Type-II Discrete Cosine Transform and
// returns the first numCoeffs coefficients:
//
//	result[k] = sum_n vector[n] * cos(pi*k*(2n+1) / (2N))
//
// numCoeffs may exceed len(vector); the same formula fills the extra
// coefficients. No orthonormal scaling is applied.
func DCT(vector []float64, numCoeffs int) []float64 {
	if numCoeffs <= 0 {
		return []float64{}
	}

	n := len(vector)
	result := make([]float64, numCoeffs)
	for k := range numCoeffs {
		for i := range n {
			result[k] += vector[i] * math.Cos((math.Pi*float64(k)*float64(2*i+1))/float64(2*n))
		}
	}

	return result
}
