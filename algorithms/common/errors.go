package common

import "errors"

// Error kinds shared by the feature extraction pipeline. Callers match them
// with errors.Is; producers wrap them with context using fmt.Errorf("%w: ...").
var (
	// ErrInvalidInputLength is returned by the FFT when the input length is
	// not a power of two. A zero-length input is not an error.
	ErrInvalidInputLength = errors.New("invalid input length")

	// ErrInvalidFrameLength is returned when a window is requested for a
	// frame shorter than two samples.
	ErrInvalidFrameLength = errors.New("invalid frame length")

	// ErrInsufficientAudio marks a waveform shorter than one analysis frame.
	// The pipeline treats it as recoverable and produces an empty matrix.
	ErrInsufficientAudio = errors.New("insufficient audio")

	// ErrFeatureDimensionMismatch is raised by callers whose consumer expects
	// a different vector width than the one produced.
	ErrFeatureDimensionMismatch = errors.New("feature dimension mismatch")

	// ErrInvalidParameters covers filter bank, preset and sample rate
	// parameters outside their valid ranges.
	ErrInvalidParameters = errors.New("invalid parameters")
)
