package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-mfcc/logging"
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM        []float64       `json:"-"` // Mono PCM in [-1, 1]
	SampleRate int             `json:"sample_rate"`
	Channels   int             `json:"channels"` // Always 1 after downmix
	Duration   time.Duration   `json:"duration"`
	Timestamp  time.Time       `json:"timestamp"`
	Metadata   *SourceMetadata `json:"metadata,omitempty"`
}

// SourceMetadata describes the input before decoding
type SourceMetadata struct {
	Path       string `json:"path,omitempty"`
	Format     Format `json:"format"`
	Codec      string `json:"codec,omitempty"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Decoder    string `json:"decoder"` // "native" or "ffmpeg"
}

// DownmixMode selects how multi-channel input becomes mono
type DownmixMode string

const (
	// DownmixFirstChannel keeps channel 0 and drops the rest
	DownmixFirstChannel DownmixMode = "first"
	// DownmixAverage averages all channels
	DownmixAverage DownmixMode = "average"
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	FFmpegPath       string        `json:"ffmpeg_path"`        // empty disables the ffmpeg fallback
	FFprobePath      string        `json:"ffprobe_path"`       // Path to ffprobe binary
	Timeout          time.Duration `json:"timeout"`            // Timeout for ffmpeg operations
	Downmix          DownmixMode   `json:"downmix"`            // "first" or "average"
	TargetSampleRate int           `json:"target_sample_rate"` // 0 keeps the source rate
	MaxDuration      time.Duration `json:"max_duration"`       // 0 decodes everything
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:  "ffmpeg",  // Assume in PATH
		FFprobePath: "ffprobe", // Assume in PATH
		Timeout:     30 * time.Second,
		Downmix:     DownmixFirstChannel,
	}
}

// Decoder turns audio files into mono PCM. WAV, MP3 and FLAC are decoded
// in-process; anything else goes through ffmpeg.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if config.Downmix == "" {
		config.Downmix = DownmixFirstChannel
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile decodes an audio file. The format is sniffed from the file
// header, falling back to the extension.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"path":     path,
	})

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error(err, "Failed to read audio file")
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	format := DetectFormat(data)
	if format == FormatUnknown {
		format = FormatFromPath(path)
	}

	audio, err := d.decode(ctx, data, format, logger)
	if err != nil {
		return nil, err
	}
	audio.Metadata.Path = path
	return audio, nil
}

// DecodeReader decodes audio from an io.Reader. An empty format is
// sniffed from the data.
func (d *Decoder) DecodeReader(ctx context.Context, reader io.Reader, format Format) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeReader",
	})

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.Error(err, "Failed to read data from reader")
		return nil, err
	}

	if format == FormatUnknown {
		format = DetectFormat(data)
	}

	return d.decode(ctx, data, format, logger)
}

// DecodeBytes decodes an in-memory audio file
func (d *Decoder) DecodeBytes(ctx context.Context, data []byte, format Format) (*AudioData, error) {
	return d.DecodeReader(ctx, bytes.NewReader(data), format)
}

func (d *Decoder) decode(ctx context.Context, data []byte, format Format, logger logging.Logger) (*AudioData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio data")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger = logger.WithFields(logging.Fields{
		"format":    format,
		"data_size": len(data),
	})

	if format.IsNative() {
		audio, err := d.decodeNative(ctx, data, format)
		if err == nil {
			logger.Debug("Native decode completed", logging.Fields{
				"sample_rate": audio.SampleRate,
				"samples":     len(audio.PCM),
			})
			return audio, nil
		}
		if d.config.FFmpegPath == "" || ctx.Err() != nil {
			logger.Error(err, "Native decode failed")
			return nil, err
		}
		logger.Warn("Native decode failed, retrying with ffmpeg", logging.Fields{
			"error": err.Error(),
		})
	}

	if d.config.FFmpegPath == "" {
		return nil, fmt.Errorf("cannot decode %s audio without ffmpeg", format)
	}

	return d.decodeWithFFmpeg(ctx, data, format, logger)
}

// newAudioData assembles the result once PCM is mono and at its final rate
func (d *Decoder) newAudioData(pcm []float64, sampleRate int, source *SourceMetadata) *AudioData {
	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(sampleRate),
		Timestamp:  time.Now(),
		Metadata:   source,
	}
}

// maxSamples returns the sample limit implied by MaxDuration, or -1
func (d *Decoder) maxSamples(sampleRate int) int {
	if d.config.MaxDuration <= 0 {
		return -1
	}
	return int(d.config.MaxDuration.Seconds() * float64(sampleRate))
}

// GetConfig returns decoder configuration information
func (d *Decoder) GetConfig() map[string]any {
	return map[string]any{
		"ffmpeg_path":        d.config.FFmpegPath,
		"ffprobe_path":       d.config.FFprobePath,
		"timeout":            d.config.Timeout.String(),
		"downmix":            d.config.Downmix,
		"target_sample_rate": d.config.TargetSampleRate,
		"max_duration":       d.config.MaxDuration.String(),
	}
}

// OutputSignature identifies the settings that change decoded PCM. Two
// decoders with equal signatures produce the same samples from the same bytes.
func (d *Decoder) OutputSignature() string {
	return fmt.Sprintf("%s-%dhz-%s", d.config.Downmix, d.config.TargetSampleRate, d.config.MaxDuration)
}

// RequiresFFmpeg reports whether any path names a container that only
// ffmpeg can decode
func RequiresFFmpeg(paths ...string) bool {
	for _, path := range paths {
		if f := FormatFromPath(path); f != FormatUnknown && !f.IsNative() {
			return true
		}
	}
	return false
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	switch d.config.Downmix {
	case DownmixFirstChannel, DownmixAverage:
	default:
		return fmt.Errorf("unknown downmix mode %q", d.config.Downmix)
	}

	if d.config.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", d.config.TargetSampleRate)
	}

	if d.config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", d.config.Timeout)
	}

	return nil
}
