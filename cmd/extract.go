package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/temporal"
	"github.com/RyanBlaney/sonido-mfcc/features"
	"github.com/RyanBlaney/sonido-mfcc/features/config"
	"github.com/RyanBlaney/sonido-mfcc/logging"
	"github.com/RyanBlaney/sonido-mfcc/transcode"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Extract an MFCC feature vector from each audio file",
	Long: `Decode each audio file to mono and print its aggregated MFCC feature
vector. WAV, MP3 and FLAC are decoded natively; other containers such as
WebM or Ogg recordings require ffmpeg.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("preset", "enhanced", "feature preset (simple, enhanced)")
	annotateConfigKey(extractCmd.Flags(), "preset", "extraction.preset")
}

// silenceThresholdDB is the frame level below which a frame counts as silent
const silenceThresholdDB = -60.0

// extractionResult is one file's output
type extractionResult struct {
	File       string        `json:"file" yaml:"file"`
	Preset     config.Preset `json:"preset" yaml:"preset"`
	SampleRate int           `json:"sample_rate" yaml:"sample_rate"`
	Duration   string        `json:"duration" yaml:"duration"`
	Frames     int           `json:"frames" yaml:"frames"`
	PeakDBFS   float64       `json:"peak_dbfs" yaml:"peak_dbfs"`
	RMSDBFS    float64       `json:"rms_dbfs" yaml:"rms_dbfs"`
	Active     float64       `json:"active_ratio" yaml:"active_ratio"`
	Vector     []float64     `json:"vector" yaml:"vector"`
	Warning    string        `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := logging.WithFields(logging.Fields{
		"component": "extract_command",
	})

	preset, err := appConfig.Preset()
	if err != nil {
		return err
	}

	extractor, err := features.NewExtractor(preset)
	if err != nil {
		return err
	}
	decoder := transcode.NewDecoder(appConfig.DecoderConfig())
	cfg := extractor.Config()
	meter := temporal.NewEnergy(cfg.FrameSize, cfg.HopSize)

	logger.Debug("Decoder settings", decoder.GetConfig())
	if transcode.RequiresFFmpeg(args...) {
		if err := decoder.CheckFFmpeg(cmd.Context()); err != nil {
			return fmt.Errorf("cannot decode non-native recordings: %w", err)
		}
	}

	results := make([]extractionResult, 0, len(args))
	for _, path := range args {
		audio, err := decoder.DecodeFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		w, err := features.FromAudioData(audio)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		analysis, err := extractor.Analyze(w)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		result := extractionResult{
			File:       path,
			Preset:     analysis.Preset,
			SampleRate: analysis.SampleRate,
			Duration:   w.Duration().Round(time.Millisecond).String(),
			Frames:     analysis.FrameCount,
			PeakDBFS:   temporal.ToDBFS(temporal.Peak(w.Samples)),
			RMSDBFS:    temporal.ToDBFS(temporal.RMS(w.Samples)),
			Active:     meter.ActiveRatio(w.Samples, silenceThresholdDB),
			Vector:     analysis.Vector,
		}
		switch err := analysis.Err(); {
		case errors.Is(err, features.ErrInsufficientAudio):
			result.Warning = err.Error()
			logger.Warn("Audio shorter than one frame", logging.Fields{"file": path})
		case result.PeakDBFS == temporal.SilenceFloorDB:
			result.Warning = "recording is silent"
			logger.Warn("Recording is silent", logging.Fields{"file": path})
		}
		results = append(results, result)
	}

	out := cmd.OutOrStdout()
	handled, err := writeStructured(out, appConfig.OutputFormat, results)
	if handled {
		return err
	}
	return writeExtractTable(out, results)
}

func writeExtractTable(out io.Writer, results []extractionResult) error {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}

		tw := newTabWriter(out)
		fmt.Fprintf(tw, "File:\t%s\n", r.File)
		fmt.Fprintf(tw, "Preset:\t%s\n", title(string(r.Preset)))
		fmt.Fprintf(tw, "Sample rate:\t%d Hz\n", r.SampleRate)
		fmt.Fprintf(tw, "Duration:\t%s\n", r.Duration)
		fmt.Fprintf(tw, "Frames:\t%d\n", r.Frames)
		fmt.Fprintf(tw, "Level:\tpeak %.1f dBFS, rms %.1f dBFS, %.0f%% active\n", r.PeakDBFS, r.RMSDBFS, 100*r.Active)
		if r.Warning != "" {
			fmt.Fprintf(tw, "Warning:\t%s\n", r.Warning)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		blocks := vectorBlocks(r.Preset, r.Vector)
		for _, b := range blocks {
			fmt.Fprintf(out, "%s (%d):\n", title(b.name), len(b.values))
			writeVectorRows(out, b.values, 10)
		}
	}
	return nil
}

type vectorBlock struct {
	name   string
	values []float64
}

// vectorBlocks splits an enhanced vector into its static, delta and
// delta-delta parts
func vectorBlocks(preset config.Preset, vector []float64) []vectorBlock {
	cfg, err := config.ConfigForPreset(preset)
	if err != nil || !cfg.EnableTemporalFeatures || len(vector) != cfg.OutputDimension() {
		return []vectorBlock{{name: "mfcc", values: vector}}
	}

	n := cfg.MFCCCoefficients
	return []vectorBlock{
		{name: "static", values: vector[:n]},
		{name: "delta", values: vector[n : 2*n]},
		{name: "delta-delta", values: vector[2*n:]},
	}
}
