package windowing

import (
	"testing"

	"github.com/mjibson/go-dsp/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

func ones(n int) []float64 {
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = 1.0
	}
	return frame
}

func TestHammingShape(t *testing.T) {
	h, err := NewHamming(2048)
	require.NoError(t, err)

	windowed, err := h.Apply(ones(2048))
	require.NoError(t, err)
	require.Len(t, windowed, 2048)

	// endpoints ~0.08, symmetric around the centre
	assert.InDelta(t, 0.08, windowed[0], 1e-6)
	assert.InDelta(t, 0.08, windowed[2047], 1e-6)
	assert.InDelta(t, windowed[100], windowed[2047-100], 1e-6)
	assert.Greater(t, windowed[1023], 0.99)
}

func TestHammingMatchesGoDSP(t *testing.T) {
	for _, n := range []int{2, 3, 16, 512, 2048} {
		h, err := NewHamming(n)
		require.NoError(t, err)

		expected := window.Hamming(n)
		assert.InDeltaSlice(t, expected, h.GetCoefficients(), 1e-12, "n=%d", n)
	}
}

func TestHammingDoesNotModifyInput(t *testing.T) {
	frame := ones(8)

	_, err := ApplyHamming(frame)
	require.NoError(t, err)
	assert.Equal(t, ones(8), frame)
}

func TestHammingRejectsShortFrames(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := NewHamming(n)
		assert.ErrorIs(t, err, common.ErrInvalidFrameLength, "n=%d", n)

		_, err = ApplyHamming(make([]float64, n))
		assert.ErrorIs(t, err, common.ErrInvalidFrameLength, "n=%d", n)
	}
}

func TestHammingRejectsMismatchedFrame(t *testing.T) {
	h, err := NewHamming(16)
	require.NoError(t, err)

	_, err = h.Apply(ones(8))
	assert.ErrorIs(t, err, common.ErrInvalidFrameLength)
}
