package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/temporal"
	"github.com/RyanBlaney/sonido-mfcc/features"
	"github.com/RyanBlaney/sonido-mfcc/logging"
	"github.com/RyanBlaney/sonido-mfcc/transcode"
)

// Sample is one labeled audio file found under a dataset root
type Sample struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Class int    `json:"class"`
}

// BuilderOptions configures a Builder
type BuilderOptions struct {
	// Workers bounds concurrent extractions; <= 0 uses GOMAXPROCS
	Workers int

	// Classes fixes the label indices. When empty, class directories are
	// indexed in name order.
	Classes ClassMap

	// Cache is optional
	Cache *Cache

	Logger logging.Logger
}

// Builder walks a <root>/<label>/<file> tree and extracts one feature
// vector per file
type Builder struct {
	extractor *features.Extractor
	decoder   *transcode.Decoder
	options   BuilderOptions
	logger    logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewBuilder creates a dataset builder
func NewBuilder(extractor *features.Extractor, decoder *transcode.Decoder, opts BuilderOptions) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if decoder == nil {
		decoder = transcode.NewDecoder(nil)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "dataset_builder",
		})
	}

	return &Builder{
		extractor: extractor,
		decoder:   decoder,
		options:   opts,
		logger:    logger,
	}
}

// CacheStats returns cache hits and misses since the builder was created
func (b *Builder) CacheStats() (hits, misses int64) {
	return b.hits.Load(), b.misses.Load()
}

// Scan lists the labeled audio files under root. Hidden entries and files
// with unsupported extensions are ignored; label directories missing from
// a fixed class map are skipped.
func (b *Builder) Scan(root string) ([]Sample, ClassMap, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset root: %w", err)
	}

	var labels []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			labels = append(labels, entry.Name())
		}
	}

	classes := b.options.Classes
	if len(classes) == 0 {
		classes = NewClassMap(labels...)
	}
	if err := classes.Validate(); err != nil {
		return nil, nil, err
	}

	var samples []Sample
	for _, label := range labels {
		class, ok := classes.Index(label)
		if !ok {
			b.logger.Warn("Directory is not in the class map, skipping", logging.Fields{
				"label": label,
			})
			continue
		}

		files, err := os.ReadDir(filepath.Join(root, label))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read class directory %s: %w", label, err)
		}

		for _, file := range files {
			name := file.Name()
			if file.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			if !slices.Contains(transcode.SupportedExtensions(), strings.ToLower(filepath.Ext(name))) {
				continue
			}
			samples = append(samples, Sample{
				Path:  filepath.Join(root, label, name),
				Label: label,
				Class: class,
			})
		}
	}

	return samples, classes, nil
}

// Build scans root and extracts every sample. Files that fail to decode
// are listed in Dataset.Skipped; cancellation and internal errors abort.
func (b *Builder) Build(ctx context.Context, root string) (*Dataset, error) {
	samples, classes, err := b.Scan(root)
	if err != nil {
		return nil, err
	}

	logger := b.logger.WithFields(logging.Fields{
		"function": "Build",
		"root":     root,
		"files":    len(samples),
		"classes":  len(classes),
		"workers":  b.options.Workers,
	})
	logger.Info("Building dataset")
	logger.Debug("Decoder settings", b.decoder.GetConfig())

	paths := make([]string, len(samples))
	for i, sample := range samples {
		paths[i] = sample.Path
	}
	if transcode.RequiresFFmpeg(paths...) {
		if err := b.decoder.CheckFFmpeg(ctx); err != nil {
			logger.Warn("ffmpeg unavailable, non-native recordings will be skipped", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	type result struct {
		vector []float64
		reason string
	}
	results := make([]result, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.Workers)

	for i, sample := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			vector, err := b.extractFile(gctx, sample.Path)
			switch {
			case err == nil:
				results[i].vector = vector
			case errors.Is(err, features.ErrFeatureDimensionMismatch), gctx.Err() != nil:
				return err
			default:
				logger.Warn("Skipping file", logging.Fields{
					"path":  sample.Path,
					"error": err.Error(),
				})
				results[i].reason = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error(err, "Dataset build aborted")
		return nil, err
	}

	ds := &Dataset{
		Preset:    b.extractor.Config().Preset,
		Dimension: b.extractor.Dimension(),
		Classes:   classes,
		Features:  make([][]float64, 0, len(samples)),
		Labels:    make([]int, 0, len(samples)),
		Files:     make([]string, 0, len(samples)),
	}
	for i, sample := range samples {
		if results[i].vector == nil {
			ds.Skipped = append(ds.Skipped, SkippedFile{Path: sample.Path, Reason: results[i].reason})
			continue
		}
		ds.Features = append(ds.Features, results[i].vector)
		ds.Labels = append(ds.Labels, sample.Class)
		ds.Files = append(ds.Files, sample.Path)
	}

	hits, misses := b.CacheStats()
	logger.Info("Dataset built", logging.Fields{
		"samples":      ds.Len(),
		"skipped":      len(ds.Skipped),
		"cache_hits":   hits,
		"cache_misses": misses,
	})

	return ds, nil
}

// extractFile decodes and extracts one file, going through the cache when
// one is configured
func (b *Builder) extractFile(ctx context.Context, path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var key []byte
	if cache := b.options.Cache; cache != nil {
		key = CacheKey(data, b.extractor.Config().Preset, b.decoder.OutputSignature())
		cached, ok, err := cache.Get(key)
		if err != nil {
			b.logger.Warn("Feature cache read failed", logging.Fields{"path": path, "error": err.Error()})
		} else if ok && len(cached.Vector) == b.extractor.Dimension() {
			b.hits.Add(1)
			return cached.Vector, nil
		}
		b.misses.Add(1)
	}

	format := transcode.DetectFormat(data)
	if format == transcode.FormatUnknown {
		format = transcode.FormatFromPath(path)
	}

	audio, err := b.decoder.DecodeBytes(ctx, data, format)
	if err != nil {
		return nil, err
	}

	w, err := features.FromAudioData(audio)
	if err != nil {
		return nil, err
	}

	analysis, err := b.extractor.Analyze(w)
	if err != nil {
		return nil, err
	}
	if err := analysis.Err(); err != nil {
		b.logger.Warn("Audio shorter than one frame, using zero vector", logging.Fields{"path": path})
	} else if temporal.Peak(w.Samples) == 0 {
		b.logger.Warn("Recording is silent", logging.Fields{"path": path})
	}
	if err := features.ValidateDimension(analysis.Vector, b.extractor.Dimension()); err != nil {
		return nil, err
	}

	if key != nil {
		err := b.options.Cache.Put(key, &CachedFeatures{
			Vector:     analysis.Vector,
			FrameCount: analysis.FrameCount,
			SampleRate: analysis.SampleRate,
		})
		if err != nil {
			b.logger.Warn("Feature cache write failed", logging.Fields{"path": path, "error": err.Error()})
		}
	}

	return analysis.Vector, nil
}
