package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-mfcc/dataset"
	"github.com/RyanBlaney/sonido-mfcc/features"
	"github.com/RyanBlaney/sonido-mfcc/logging"
	"github.com/RyanBlaney/sonido-mfcc/transcode"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Build and inspect labeled training datasets",
}

var datasetBuildCmd = &cobra.Command{
	Use:   "build DIR",
	Short: "Extract features for every file under DIR/<label>/",
	Long: `Walk DIR, treating each subdirectory as a class label, and extract one
feature vector per audio file. The result is written with one-hot ready
labels and the class map used to number them.

Files that cannot be decoded are listed as skipped instead of failing the
build. With --cache-dir, vectors are cached by file content so rebuilding
a growing corpus only extracts new recordings.`,
	Args: cobra.ExactArgs(1),
	RunE: runDatasetBuild,
}

var datasetInspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Summarize a dataset file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetInspect,
}

var (
	datasetOut         string
	datasetClassMapOut string
)

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetBuildCmd)
	datasetCmd.AddCommand(datasetInspectCmd)

	flags := datasetBuildCmd.Flags()
	flags.StringVar(&datasetOut, "out", "", "output file (required)")
	flags.StringVar(&datasetClassMapOut, "class-map-out", "", "also write the class map as JSON to this file")
	flags.String("preset", "enhanced", "feature preset (simple, enhanced)")
	flags.String("format", "", "dataset encoding (msgpack, json, yaml; default from the --out extension)")
	flags.String("class-map", "", "class map JSON fixing label indices")
	flags.String("cache-dir", "", "feature cache directory")
	flags.Int("workers", 0, "concurrent extractions (default GOMAXPROCS)")
	_ = datasetBuildCmd.MarkFlagRequired("out")

	annotateConfigKey(flags, "preset", "extraction.preset")
	annotateConfigKey(flags, "format", "dataset.format")
	annotateConfigKey(flags, "class-map", "dataset.class_map")
	annotateConfigKey(flags, "cache-dir", "dataset.cache_dir")
	annotateConfigKey(flags, "workers", "dataset.workers")
}

func runDatasetBuild(cmd *cobra.Command, args []string) error {
	logger := logging.WithFields(logging.Fields{
		"component": "dataset_command",
	})

	preset, err := appConfig.Preset()
	if err != nil {
		return err
	}
	// An explicit format wins over the --out extension
	var encoding dataset.Encoding
	if name := appConfig.Dataset.Format; name != "" {
		if encoding, err = dataset.ParseEncoding(name); err != nil {
			return err
		}
	}

	extractor, err := features.NewExtractor(preset)
	if err != nil {
		return err
	}

	opts := dataset.BuilderOptions{Workers: appConfig.Dataset.Workers}

	if path := appConfig.Dataset.ClassMap; path != "" {
		opts.Classes, err = dataset.LoadClassMap(path)
		if err != nil {
			return err
		}
	}

	if dir := appConfig.Dataset.CacheDir; dir != "" {
		cache, err := dataset.OpenCache(dataset.CacheOptions{Dir: dir})
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error(err, "Failed to close feature cache")
			}
		}()
		opts.Cache = cache
	}

	builder := dataset.NewBuilder(extractor, transcode.NewDecoder(appConfig.DecoderConfig()), opts)
	ds, err := builder.Build(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := dataset.WriteFile(datasetOut, ds, encoding); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if datasetClassMapOut != "" {
		if err := ds.Classes.Save(datasetClassMapOut); err != nil {
			return fmt.Errorf("failed to write class map: %w", err)
		}
	}

	if encoding == "" {
		encoding = dataset.EncodingFromPath(datasetOut)
	}
	logger.Info("Dataset written", logging.Fields{
		"path":     datasetOut,
		"encoding": encoding,
		"samples":  ds.Len(),
	})

	return writeDatasetSummary(cmd.OutOrStdout(), ds)
}

func runDatasetInspect(cmd *cobra.Command, args []string) error {
	ds, err := dataset.ReadFile(args[0])
	if err != nil {
		return err
	}
	return writeDatasetSummary(cmd.OutOrStdout(), ds)
}

// datasetSummary is the structured form of a dataset overview
type datasetSummary struct {
	Preset    string         `json:"preset" yaml:"preset"`
	Dimension int            `json:"dimension" yaml:"dimension"`
	Samples   int            `json:"samples" yaml:"samples"`
	Classes   map[string]int `json:"classes" yaml:"classes"`
	Skipped   int            `json:"skipped" yaml:"skipped"`
	Means     []float64      `json:"means,omitempty" yaml:"means,omitempty"`
	StdDevs   []float64      `json:"std_devs,omitempty" yaml:"std_devs,omitempty"`
}

func writeDatasetSummary(out io.Writer, ds *dataset.Dataset) error {
	summary := datasetSummary{
		Preset:    string(ds.Preset),
		Dimension: ds.Dimension,
		Samples:   ds.Len(),
		Classes:   ds.ClassCounts(),
		Skipped:   len(ds.Skipped),
	}
	if appConfig.Verbose {
		summary.Means, summary.StdDevs = ds.FeatureStats()
	}

	handled, err := writeStructured(out, appConfig.OutputFormat, summary)
	if handled {
		return err
	}

	tw := newTabWriter(out)
	fmt.Fprintf(tw, "Preset:\t%s\n", title(summary.Preset))
	fmt.Fprintf(tw, "Dimension:\t%d\n", summary.Dimension)
	fmt.Fprintf(tw, "Samples:\t%d\n", summary.Samples)
	fmt.Fprintf(tw, "Skipped:\t%d\n", summary.Skipped)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "INDEX\tCLASS\tSAMPLES")
	for _, name := range ds.Classes.Names() {
		idx, _ := ds.Classes.Index(name)
		fmt.Fprintf(tw, "%d\t%s\t%d\n", idx, name, summary.Classes[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, s := range ds.Skipped {
		fmt.Fprintf(out, "skipped %s: %s\n", s.Path, s.Reason)
	}

	if len(summary.Means) > 0 {
		fmt.Fprintln(out, "\nFeature means:")
		writeVectorRows(out, summary.Means, 10)
		fmt.Fprintln(out, "Feature standard deviations:")
		writeVectorRows(out, summary.StdDevs, 10)
	}

	if missing := emptyClasses(ds); len(missing) > 0 {
		fmt.Fprintf(out, "classes without samples: %v\n", missing)
	}
	return nil
}

func emptyClasses(ds *dataset.Dataset) []string {
	counts := ds.ClassCounts()
	var missing []string
	for _, name := range ds.Classes.Names() {
		if counts[name] == 0 {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}
