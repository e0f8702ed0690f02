package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

// Error kinds surfaced by extraction. They are the algorithms/common
// sentinels, re-exported so callers only need this package for errors.Is.
var (
	ErrInvalidInputLength       = common.ErrInvalidInputLength
	ErrInvalidFrameLength       = common.ErrInvalidFrameLength
	ErrInsufficientAudio        = common.ErrInsufficientAudio
	ErrFeatureDimensionMismatch = common.ErrFeatureDimensionMismatch
	ErrInvalidParameters        = common.ErrInvalidParameters
)

// ValidateDimension checks that a feature vector has the width a consumer
// (a trained classifier, a stored dataset) expects
func ValidateDimension(vector []float64, expected int) error {
	if len(vector) != expected {
		return fmt.Errorf("%w: got %d values, expected %d", ErrFeatureDimensionMismatch, len(vector), expected)
	}
	return nil
}
