package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-mfcc/features"
	"github.com/RyanBlaney/sonido-mfcc/features/config"
)

// SkippedFile records an input that did not make it into a dataset
type SkippedFile struct {
	Path   string `json:"path" yaml:"path" msgpack:"path"`
	Reason string `json:"reason" yaml:"reason" msgpack:"reason"`
}

// Dataset is a labeled feature matrix ready for classifier training.
// Row i of Features came from Files[i] and has class Labels[i].
type Dataset struct {
	Preset    config.Preset `json:"preset" yaml:"preset" msgpack:"preset"`
	Dimension int           `json:"dimension" yaml:"dimension" msgpack:"dimension"`
	Classes   ClassMap      `json:"classes" yaml:"classes" msgpack:"classes"`
	Features  [][]float64   `json:"features" yaml:"features" msgpack:"features"`
	Labels    []int         `json:"labels" yaml:"labels" msgpack:"labels"`
	Files     []string      `json:"files" yaml:"files" msgpack:"files"`
	Skipped   []SkippedFile `json:"skipped,omitempty" yaml:"skipped,omitempty" msgpack:"skipped,omitempty"`
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.Features)
}

// OneHot expands Labels to one-hot rows of width Classes.NumClasses()
func (d *Dataset) OneHot() [][]float64 {
	width := d.Classes.NumClasses()
	rows := make([][]float64, len(d.Labels))
	for i, label := range d.Labels {
		rows[i] = make([]float64, width)
		if label >= 0 && label < width {
			rows[i][label] = 1
		}
	}
	return rows
}

// ClassCounts returns the number of samples per class name
func (d *Dataset) ClassCounts() map[string]int {
	counts := make(map[string]int, len(d.Classes))
	for _, label := range d.Labels {
		counts[d.Classes.Label(label)]++
	}
	return counts
}

// FeatureStats returns the per-dimension mean and standard deviation
func (d *Dataset) FeatureStats() (means, stds []float64) {
	means = make([]float64, d.Dimension)
	stds = make([]float64, d.Dimension)
	if len(d.Features) == 0 {
		return means, stds
	}

	column := make([]float64, len(d.Features))
	for j := range d.Dimension {
		for i, row := range d.Features {
			column[i] = row[j]
		}
		if len(column) > 1 {
			means[j], stds[j] = stat.MeanStdDev(column, nil)
		} else {
			means[j] = column[0]
		}
	}
	return means, stds
}

// Validate checks that the parallel slices line up, that every vector has
// the declared dimension and that every label is known
func (d *Dataset) Validate() error {
	if len(d.Labels) != len(d.Features) || len(d.Files) != len(d.Features) {
		return fmt.Errorf("dataset has %d vectors, %d labels and %d files", len(d.Features), len(d.Labels), len(d.Files))
	}

	if cfg, err := config.ConfigForPreset(d.Preset); err == nil && cfg.OutputDimension() != d.Dimension {
		return fmt.Errorf("%w: preset %s produces %d values, dataset declares %d",
			features.ErrFeatureDimensionMismatch, d.Preset, cfg.OutputDimension(), d.Dimension)
	}

	for i, vector := range d.Features {
		if err := features.ValidateDimension(vector, d.Dimension); err != nil {
			return fmt.Errorf("%s: %w", d.Files[i], err)
		}
	}

	for i, label := range d.Labels {
		if !d.Classes.HasIndex(label) {
			return fmt.Errorf("%s: label %d is not in the class map", d.Files[i], label)
		}
	}

	return d.Classes.Validate()
}
