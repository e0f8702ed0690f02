package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/spectral"
)

// FrameCount returns how many frames the pipeline produces for a signal of
// numSamples. A frame starting exactly at numSamples-frameSize is not taken.
func FrameCount(numSamples, frameSize, hopSize int) int {
	if hopSize <= 0 || numSamples <= frameSize {
		return 0
	}
	return (numSamples-frameSize-1)/hopSize + 1
}

// computeStaticFrames slides a frame over the waveform and computes one row
// of MFCCs per frame. Samples shorter than a frame produce an empty matrix.
func computeStaticFrames(samples []float64, mfcc *spectral.MFCC, hopSize int) ([][]float64, error) {
	frameSize := mfcc.GetFrameSize()
	frames := make([][]float64, 0, FrameCount(len(samples), frameSize, hopSize))

	for start := 0; start < len(samples)-frameSize; start += hopSize {
		result, err := mfcc.Compute(samples[start : start+frameSize])
		if err != nil {
			return nil, fmt.Errorf("frame at sample %d: %w", start, err)
		}
		frames = append(frames, result.MFCC)
	}

	return frames, nil
}
