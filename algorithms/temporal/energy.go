package temporal

import (
	"math"
)

// SilenceFloorDB is the level reported for digital silence
const SilenceFloorDB = -120.0

// Energy measures signal level over a whole waveform or over frames
type Energy struct {
	frameSize int
	hopSize   int
}

// NewEnergy creates a level meter for frameSize/hopSize framing
func NewEnergy(frameSize, hopSize int) *Energy {
	return &Energy{
		frameSize: frameSize,
		hopSize:   hopSize,
	}
}

// RMS returns the root mean square of signal, 0 when empty
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sumSquares := 0.0
	for _, s := range signal {
		sumSquares += s * s
	}
	return math.Sqrt(sumSquares / float64(len(signal)))
}

// Peak returns the largest absolute sample value
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, s := range signal {
		peak = max(peak, math.Abs(s))
	}
	return peak
}

// ToDBFS converts a linear amplitude relative to full scale (1.0) to dB,
// clamped at SilenceFloorDB
func ToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return SilenceFloorDB
	}
	return max(20.0*math.Log10(amplitude), SilenceFloorDB)
}

// ComputeShortTimeEnergy calculates RMS energy for overlapping frames
func (e *Energy) ComputeShortTimeEnergy(signal []float64) []float64 {
	if len(signal) < e.frameSize || e.hopSize <= 0 || e.frameSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-e.frameSize)/e.hopSize + 1
	energies := make([]float64, numFrames)

	for i := range numFrames {
		start := i * e.hopSize
		energies[i] = RMS(signal[start : start+e.frameSize])
	}

	return energies
}

// ActiveRatio returns the fraction of frames whose RMS level is above
// thresholdDB. Signals shorter than one frame are measured as a single frame.
func (e *Energy) ActiveRatio(signal []float64, thresholdDB float64) float64 {
	energies := e.ComputeShortTimeEnergy(signal)
	if len(energies) == 0 {
		if ToDBFS(RMS(signal)) > thresholdDB {
			return 1
		}
		return 0
	}

	active := 0
	for _, energy := range energies {
		if ToDBFS(energy) > thresholdDB {
			active++
		}
	}
	return float64(active) / float64(len(energies))
}
