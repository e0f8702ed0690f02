package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/spectral"
)

func TestFrameCount(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		want    int
	}{
		{"empty", 0, 0},
		{"shorter than frame", 100, 0},
		{"exactly one frame", 2048, 0},
		{"one sample over", 2049, 1},
		{"one hop over", 2048 + 512, 1},
		{"one hop and a sample over", 2048 + 513, 2},
		{"two seconds at 44.1k", 88200, 169},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FrameCount(tt.samples, 2048, 512))
		})
	}

	assert.Equal(t, 0, FrameCount(4096, 2048, 0))
}

func TestComputeStaticFramesMatchesFrameCount(t *testing.T) {
	mfcc, err := spectral.NewMFCCWithParams(16000, spectral.MFCCParams{
		NumCoefficients: 13,
		NumMelFilters:   26,
		FrameSize:       512,
	}, spectral.NewFilterBankCache())
	require.NoError(t, err)

	samples := sineWave(16000, 300, 0.5, 0.8)
	frames, err := computeStaticFrames(samples, mfcc, 128)
	require.NoError(t, err)
	assert.Len(t, frames, FrameCount(len(samples), 512, 128))

	// Each row is the per-frame MFCC of the slice at its start offset
	single, err := mfcc.Compute(samples[128*3 : 128*3+512])
	require.NoError(t, err)
	assert.Equal(t, single.MFCC, frames[3])
}

func TestAggregate(t *testing.T) {
	frames := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	assert.InDeltaSlice(t, []float64{3, 4}, Aggregate(frames, 2), 1e-12)

	assert.Equal(t, []float64{0, 0, 0}, Aggregate(nil, 3))
}
