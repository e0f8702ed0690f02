package transcode

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format names an audio container
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatOgg     Format = "ogg"
	FormatWebM    Format = "webm"
)

// IsNative reports whether the format is decoded without ffmpeg
func (f Format) IsNative() bool {
	switch f {
	case FormatWAV, FormatMP3, FormatFLAC:
		return true
	}
	return false
}

// DetectFormat sniffs the container from its leading bytes
func DetectFormat(data []byte) Format {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return FormatWebM
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return FormatMP3
	}
	return FormatUnknown
}

// FormatFromPath guesses the container from a file extension
func FormatFromPath(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "wav", "wave":
		return FormatWAV
	case "mp3":
		return FormatMP3
	case "flac":
		return FormatFLAC
	case "ogg", "oga", "opus":
		return FormatOgg
	case "webm":
		return FormatWebM
	}
	return FormatUnknown
}

// SupportedExtensions lists the file extensions the dataset walker picks up
func SupportedExtensions() []string {
	return []string{".wav", ".wave", ".mp3", ".flac", ".ogg", ".oga", ".opus", ".webm"}
}
