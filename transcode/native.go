package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/mewkiz/flac"
)

// resampleQuality is the beep interpolation quality used for TargetSampleRate
const resampleQuality = 4

// streamChunk is how many stereo frames are pulled per Stream call
const streamChunk = 4096

// decodeNative decodes WAV, MP3 or FLAC without leaving the process
func (d *Decoder) decodeNative(ctx context.Context, data []byte, format Format) (*AudioData, error) {
	var (
		streamer beep.Streamer
		closer   io.Closer
		rate     int
		channels int
		codec    string
	)

	switch format {
	case FormatWAV:
		s, f, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("wav decode failed: %w", err)
		}
		streamer, closer, rate, channels, codec = s, s, int(f.SampleRate), f.NumChannels, "pcm"

	case FormatMP3:
		s, f, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("mp3 decode failed: %w", err)
		}
		streamer, closer, rate, channels, codec = s, s, int(f.SampleRate), f.NumChannels, "mp3"

	case FormatFLAC:
		s, err := newFLACStreamer(bytes.NewReader(data), d.config.Downmix)
		if err != nil {
			return nil, fmt.Errorf("flac decode failed: %w", err)
		}
		streamer, closer, rate, channels, codec = s, s, s.sampleRate(), s.channels(), "flac"

	default:
		return nil, fmt.Errorf("format %q is not decoded natively", format)
	}
	defer closer.Close()

	if rate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d in %s stream", rate, format)
	}

	outRate := rate
	if target := d.config.TargetSampleRate; target > 0 && target != rate {
		streamer = beep.Resample(resampleQuality, beep.SampleRate(rate), beep.SampleRate(target), streamer)
		outRate = target
	}
	if limit := d.maxSamples(outRate); limit >= 0 {
		streamer = beep.Take(limit, streamer)
	}

	pcm, err := drain(ctx, streamer, d.config.Downmix)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	return d.newAudioData(pcm, outRate, &SourceMetadata{
		Format:     format,
		Codec:      codec,
		SampleRate: rate,
		Channels:   channels,
		Decoder:    "native",
	}), nil
}

// drain pulls a streamer to the end, folding each stereo frame to mono
func drain(ctx context.Context, streamer beep.Streamer, mode DownmixMode) ([]float64, error) {
	buf := make([][2]float64, streamChunk)
	var pcm []float64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			pcm = append(pcm, mixFrame(frame, mode))
		}
		if !ok {
			break
		}
	}

	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("stream error: %w", err)
	}
	return pcm, nil
}

// mixFrame folds one stereo frame to mono. Mono sources arrive with the
// same sample in both slots.
func mixFrame(frame [2]float64, mode DownmixMode) float64 {
	if mode == DownmixAverage {
		return (frame[0] + frame[1]) / 2
	}
	return frame[0]
}

// flacStreamer adapts a FLAC stream to beep.Streamer. Slot 0 carries
// channel 0; slot 1 carries channel 1, or the mean of all channels when
// averaging so that mixFrame stays exact for more than two channels.
type flacStreamer struct {
	stream *flac.Stream
	mode   DownmixMode
	scale  float64
	buf    [][2]float64
	pos    int
	err    error
}

func newFLACStreamer(r io.Reader, mode DownmixMode) (*flacStreamer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, err
	}
	if stream.Info.BitsPerSample == 0 || stream.Info.NChannels == 0 {
		stream.Close()
		return nil, fmt.Errorf("invalid stream info: %d bits, %d channels", stream.Info.BitsPerSample, stream.Info.NChannels)
	}

	return &flacStreamer{
		stream: stream,
		mode:   mode,
		scale:  1 / float64(int64(1)<<(stream.Info.BitsPerSample-1)),
	}, nil
}

func (f *flacStreamer) sampleRate() int {
	return int(f.stream.Info.SampleRate)
}

func (f *flacStreamer) channels() int {
	return int(f.stream.Info.NChannels)
}

func (f *flacStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if f.pos >= len(f.buf) && !f.nextFrame() {
			break
		}
		copied := copy(samples[n:], f.buf[f.pos:])
		n += copied
		f.pos += copied
	}
	return n, n > 0
}

func (f *flacStreamer) Err() error {
	return f.err
}

func (f *flacStreamer) Close() error {
	return f.stream.Close()
}

func (f *flacStreamer) nextFrame() bool {
	if f.err != nil {
		return false
	}

	frame, err := f.stream.ParseNext()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			f.err = err
		}
		return false
	}
	if len(frame.Subframes) == 0 {
		return false
	}

	count := len(frame.Subframes[0].Samples)
	f.buf = f.buf[:0]
	for i := range count {
		first := float64(frame.Subframes[0].Samples[i]) * f.scale
		second := first

		if f.mode == DownmixAverage {
			sum := 0.0
			for _, sub := range frame.Subframes {
				sum += float64(sub.Samples[i])
			}
			first = sum / float64(len(frame.Subframes)) * f.scale
			second = first
		} else if len(frame.Subframes) > 1 {
			second = float64(frame.Subframes[1].Samples[i]) * f.scale
		}

		f.buf = append(f.buf, [2]float64{first, second})
	}
	f.pos = 0

	return true
}
