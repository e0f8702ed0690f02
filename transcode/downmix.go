package transcode

// Downmix folds interleaved multi-channel PCM to mono. A trailing partial
// frame is dropped.
func Downmix(interleaved []float64, channels int, mode DownmixMode) []float64 {
	if channels <= 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]float64, frames)
	for i := range frames {
		frame := interleaved[i*channels : (i+1)*channels]
		if mode == DownmixAverage {
			sum := 0.0
			for _, v := range frame {
				sum += v
			}
			mono[i] = sum / float64(channels)
		} else {
			mono[i] = frame[0]
		}
	}

	return mono
}
