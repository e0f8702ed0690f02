package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mfcc/dataset"
)

// resetFlags restores every flag to its default so one invocation does
// not leak into the next
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the CLI with args and returns stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTestWAV(t *testing.T, path string, seconds float64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	const sampleRate = 16000
	total := int(seconds * sampleRate)
	pos := 0
	streamer := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < total {
			v := 0.3 * math.Sin(2*math.Pi*440*float64(pos)/sampleRate)
			samples[n] = [2]float64{v, v}
			n++
			pos++
		}
		return n, true
	})
	require.NoError(t, wav.Encode(f, streamer, beep.Format{SampleRate: sampleRate, NumChannels: 1, Precision: 2}))
}

func TestLabelsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class-map.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["crow",0],["sparrow",1]]`), 0o644))

	out, err := executeCommand(t, "labels", path, "1", "-o", "table")
	require.NoError(t, err)
	assert.Equal(t, "sparrow\n", out)

	out, err = executeCommand(t, "labels", path, "7", "-o", "table")
	require.NoError(t, err)
	assert.Equal(t, "Unknown\n", out)

	out, err = executeCommand(t, "labels", path, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[["crow",0],["sparrow",1]]`, out)

	_, err = executeCommand(t, "labels", path, "first", "-o", "table")
	assert.Error(t, err)
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 1)

	out, err := executeCommand(t, "extract", "--preset", "simple", "-o", "json", path)
	require.NoError(t, err)

	var results []extractionResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, path, results[0].File)
	assert.Equal(t, 16000, results[0].SampleRate)
	assert.Equal(t, 28, results[0].Frames)
	assert.Len(t, results[0].Vector, 13)
	assert.Empty(t, results[0].Warning)
	assert.InDelta(t, -10.46, results[0].PeakDBFS, 0.1)
	assert.InDelta(t, -13.47, results[0].RMSDBFS, 0.1)
	assert.Equal(t, 1.0, results[0].Active)

	out, err = executeCommand(t, "extract", "--preset", "enhanced", "-o", "table", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Enhanced")
	assert.Contains(t, out, "Static (20):")
	assert.Equal(t, 3, strings.Count(out, " (20):"))
}

func TestExtractCommandShortAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blip.wav")
	writeTestWAV(t, path, 0.05)

	out, err := executeCommand(t, "extract", "--preset", "simple", "-o", "json", path)
	require.NoError(t, err)

	var results []extractionResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Frames)
	assert.Equal(t, make([]float64, 13), results[0].Vector)
	assert.NotEmpty(t, results[0].Warning)
}

func TestFilterbankCommand(t *testing.T) {
	out, err := executeCommand(t, "filterbank", "--sample-rate", "16000", "--preset", "simple", "-o", "json")
	require.NoError(t, err)

	var filters []filterInfo
	require.NoError(t, json.Unmarshal([]byte(out), &filters))
	require.Len(t, filters, 26)
	assert.Equal(t, 0, filters[0].LeftBin)
	assert.Equal(t, 1024, filters[25].RightBin)
	for _, f := range filters {
		assert.LessOrEqual(t, f.LeftBin, f.Center)
		assert.LessOrEqual(t, f.Center, f.RightBin)
	}
}

func TestDatasetBuildCommand(t *testing.T) {
	root := t.TempDir()
	writeTestWAV(t, filepath.Join(root, "crow", "a.wav"), 0.5)
	writeTestWAV(t, filepath.Join(root, "owl", "b.wav"), 0.5)

	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "birds.json")
	classMapPath := filepath.Join(outDir, "class-map.json")

	out, err := executeCommand(t, "dataset", "build", root,
		"--out", outPath, "--format", "json", "--class-map-out", classMapPath,
		"--preset", "simple", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Samples:")

	ds, err := dataset.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 13, ds.Dimension)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, ds.OneHot())

	classes, err := dataset.LoadClassMap(classMapPath)
	require.NoError(t, err)
	assert.Equal(t, dataset.NewClassMap("crow", "owl"), classes)

	out, err = executeCommand(t, "dataset", "inspect", outPath, "-o", "json")
	require.NoError(t, err)

	var summary datasetSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 2, summary.Samples)
	assert.Equal(t, map[string]int{"crow": 1, "owl": 1}, summary.Classes)
}

func TestDatasetBuildFormatFollowsExtension(t *testing.T) {
	root := t.TempDir()
	writeTestWAV(t, filepath.Join(root, "crow", "a.wav"), 0.5)

	outDir := t.TempDir()
	jsonPath := filepath.Join(outDir, "train.json")
	_, err := executeCommand(t, "dataset", "build", root, "--out", jsonPath, "--preset", "simple", "-o", "table")
	require.NoError(t, err)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))

	out, err := executeCommand(t, "dataset", "inspect", jsonPath, "-o", "json")
	require.NoError(t, err)
	var summary datasetSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Samples)

	// An explicit format wins and the file still reads back
	mismatched := filepath.Join(outDir, "train-packed.json")
	_, err = executeCommand(t, "dataset", "build", root, "--out", mismatched, "--format", "msgpack", "--preset", "simple", "-o", "table")
	require.NoError(t, err)

	raw, err = os.ReadFile(mismatched)
	require.NoError(t, err)
	assert.False(t, json.Valid(raw))

	_, err = executeCommand(t, "dataset", "inspect", mismatched, "-o", "json")
	require.NoError(t, err)
}

func TestExtractRequiresFFmpegForOgg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.ogg")
	require.NoError(t, os.WriteFile(path, []byte("OggS"), 0o644))
	t.Setenv("SONIDO_MFCC_DECODER_FFMPEG_PATH", filepath.Join(t.TempDir(), "no-such-ffmpeg"))

	_, err := executeCommand(t, "extract", "--preset", "simple", "-o", "json", path)
	assert.ErrorContains(t, err, "ffmpeg not found")
}

func TestUnknownOutputFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "class-map.json")
	require.NoError(t, os.WriteFile(path, []byte(`[["crow",0]]`), 0o644))

	_, err := executeCommand(t, "labels", path, "0", "-o", "csv")
	assert.Error(t, err)
}

func TestErrorsLeftToCaller(t *testing.T) {
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"labels", filepath.Join(t.TempDir(), "missing.json"), "-o", "table"})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.NotContains(t, errOut.String(), "Error:")
	assert.NotContains(t, errOut.String(), "Usage:")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Enhanced", title("enhanced"))
	assert.Equal(t, "Output Format", title("output_format"))
}
