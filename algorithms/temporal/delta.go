package temporal

// DefaultDeltaWindow is the regression half-width used for delta features
const DefaultDeltaWindow = 2

// Delta computes first-order regression deltas over a feature matrix:
//
//	d[t][i] = sum_{n=1}^{N} n*(c[t+n][i] - c[t-n][i]) / sum_{n=1}^{N} 2n^2
//
// Indices past either end are clamped to the boundary frame, so the output
// has the same shape as the input. A zero denominator (N <= 0) yields zeros.
func Delta(frames [][]float64, window int) [][]float64 {
	numFrames := len(frames)
	if numFrames == 0 {
		return [][]float64{}
	}

	deltas := make([][]float64, numFrames)
	for t := range numFrames {
		numCoeffs := len(frames[t])
		delta := make([]float64, numCoeffs)

		for i := range numCoeffs {
			numerator := 0.0
			denominator := 0.0

			for n := 1; n <= window; n++ {
				forward := min(t+n, numFrames-1)
				backward := max(t-n, 0)

				numerator += float64(n) * (frames[forward][i] - frames[backward][i])
				denominator += float64(2 * n * n)
			}

			if denominator > 0 {
				delta[i] = numerator / denominator
			}
		}

		deltas[t] = delta
	}

	return deltas
}

// DeltaDelta computes second-order deltas (delta of the delta matrix)
func DeltaDelta(frames [][]float64, window int) [][]float64 {
	return Delta(Delta(frames, window), window)
}

// Stack concatenates matching rows of several matrices, in argument order.
// Rows beyond the shortest matrix are dropped.
func Stack(matrices ...[][]float64) [][]float64 {
	if len(matrices) == 0 {
		return [][]float64{}
	}

	numFrames := len(matrices[0])
	for _, m := range matrices[1:] {
		numFrames = min(numFrames, len(m))
	}

	stacked := make([][]float64, numFrames)
	for t := range numFrames {
		width := 0
		for _, m := range matrices {
			width += len(m[t])
		}

		row := make([]float64, 0, width)
		for _, m := range matrices {
			row = append(row, m[t]...)
		}
		stacked[t] = row
	}

	return stacked
}
