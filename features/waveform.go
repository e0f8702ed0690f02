package features

import (
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-mfcc/transcode"
)

// Waveform is a mono PCM signal. Extraction never modifies Samples.
type Waveform struct {
	SampleRate int       `json:"sample_rate"`
	Samples    []float64 `json:"-"`
}

// NewWaveform wraps samples recorded at sampleRate
func NewWaveform(sampleRate int, samples []float64) Waveform {
	return Waveform{SampleRate: sampleRate, Samples: samples}
}

// FromAudioData converts decoder output into a waveform
func FromAudioData(audio *transcode.AudioData) (Waveform, error) {
	if audio == nil {
		return Waveform{}, fmt.Errorf("audio data cannot be nil")
	}
	return Waveform{SampleRate: audio.SampleRate, Samples: audio.PCM}, nil
}

// Len returns the number of samples
func (w Waveform) Len() int {
	return len(w.Samples)
}

// Duration returns the playback length of the waveform
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}
