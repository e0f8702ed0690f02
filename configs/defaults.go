package configs

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults fills every key the application reads
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "table")

	// Extraction defaults
	v.SetDefault("extraction.preset", "enhanced")

	// Decoder defaults
	v.SetDefault("decoder.ffmpeg_path", "ffmpeg")
	v.SetDefault("decoder.ffprobe_path", "ffprobe")
	v.SetDefault("decoder.timeout", 30*time.Second)
	v.SetDefault("decoder.downmix", "first")
	v.SetDefault("decoder.target_sample_rate", 0)
	v.SetDefault("decoder.max_duration", time.Duration(0))

	// Dataset defaults
	v.SetDefault("dataset.workers", 0)
	v.SetDefault("dataset.format", "") // empty follows the output file extension
	v.SetDefault("dataset.cache_dir", "")
	v.SetDefault("dataset.class_map", "")
}
