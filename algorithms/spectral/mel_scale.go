package spectral

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/RyanBlaney/sonido-mfcc/algorithms/common"
)

// MelScale provides mel frequency conversion utilities
type MelScale struct {
	// No state needed - conversions are pure
}

// NewMelScale creates a new mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// HzToMel converts frequency in Hz to mel scale (natural log form)
func (ms *MelScale) HzToMel(hz float64) float64 {
	return 1125 * math.Log(1+hz/700)
}

// MelToHz converts mel scale to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	return 700 * (math.Exp(mel/1125) - 1)
}

// FilterBankKey identifies a filter bank parameter set
type FilterBankKey struct {
	SampleRate int     `json:"sample_rate"`
	NumFilters int     `json:"num_filters"`
	NFFT       int     `json:"nfft"`
	LowFreq    float64 `json:"low_freq"`
	HighFreq   float64 `json:"high_freq"`
}

// String renders the key for logs and singleflight grouping
func (k FilterBankKey) String() string {
	return strconv.Itoa(k.SampleRate) + "/" + strconv.Itoa(k.NumFilters) + "/" + strconv.Itoa(k.NFFT) + "/" +
		strconv.FormatFloat(k.LowFreq, 'g', -1, 64) + "-" + strconv.FormatFloat(k.HighFreq, 'g', -1, 64)
}

// Validate checks the parameter ranges a filter bank can be built for
func (k FilterBankKey) Validate() error {
	switch {
	case math.IsNaN(k.LowFreq) || math.IsNaN(k.HighFreq):
		return fmt.Errorf("%w: frequency bounds must be numbers, got %g-%g", common.ErrInvalidParameters, k.LowFreq, k.HighFreq)
	case k.NumFilters < 1:
		return fmt.Errorf("%w: filter count must be at least 1, got %d", common.ErrInvalidParameters, k.NumFilters)
	case k.NFFT < 2 || !common.IsPowerOfTwo(k.NFFT):
		return fmt.Errorf("%w: nfft must be a power of two >= 2, got %d", common.ErrInvalidParameters, k.NFFT)
	case k.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", common.ErrInvalidParameters, k.SampleRate)
	case k.LowFreq < 0:
		return fmt.Errorf("%w: low frequency must be non-negative, got %g", common.ErrInvalidParameters, k.LowFreq)
	case k.HighFreq > float64(k.SampleRate)/2:
		return fmt.Errorf("%w: high frequency %g exceeds Nyquist %g", common.ErrInvalidParameters, k.HighFreq, float64(k.SampleRate)/2)
	case k.HighFreq <= k.LowFreq:
		return fmt.Errorf("%w: high frequency %g must exceed low frequency %g", common.ErrInvalidParameters, k.HighFreq, k.LowFreq)
	}
	return nil
}

// FilterBank is a set of triangular mel filters over nfft/2+1 bins.
// It is read-only once built and may be shared between goroutines.
type FilterBank struct {
	Key     FilterBankKey `json:"key"`
	Filters [][]float64   `json:"filters"`
	Bins    []int         `json:"bins"` // FFT bin of each of the NumFilters+2 mel points
}

// NumBins returns the length of every filter
func (fb *FilterBank) NumBins() int {
	return fb.Key.NFFT/2 + 1
}

// CreateMelFilterBank creates a mel-scale filter bank.
//
// Mel points are spaced evenly between lowFreq and highFreq and mapped to
// bins with floor(hz / sampleRate * nfft). Adjacent points that land on the
// same bin leave that side of the triangle at zero.
func (ms *MelScale) CreateMelFilterBank(numFilters int, nfft int, sampleRate int, lowFreq, highFreq float64) (*FilterBank, error) {
	key := FilterBankKey{
		SampleRate: sampleRate,
		NumFilters: numFilters,
		NFFT:       nfft,
		LowFreq:    lowFreq,
		HighFreq:   highFreq,
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	// Create equally spaced mel points
	lowMel := ms.HzToMel(lowFreq)
	highMel := ms.HzToMel(highFreq)
	melPoints := make([]float64, numFilters+2)
	for i := range melPoints {
		melPoints[i] = lowMel + (float64(i)*(highMel-lowMel))/float64(numFilters+1)
	}

	// Convert mel points back to Hz and then to FFT bin indices
	bins := make([]int, len(melPoints))
	for i, mel := range melPoints {
		hz := ms.MelToHz(mel)
		bins[i] = int(math.Floor((hz / float64(sampleRate)) * float64(nfft)))
	}

	numBins := nfft/2 + 1
	filters := make([][]float64, numFilters)
	for m := 1; m <= numFilters; m++ {
		filter := make([]float64, numBins)
		left, center, right := bins[m-1], bins[m], bins[m+1]

		// Rising edge
		for k := max(left, 0); k < center && k < numBins; k++ {
			filter[k] = float64(k-left) / float64(center-left)
		}

		// Falling edge
		for k := max(center, 0); k < right && k < numBins; k++ {
			filter[k] = float64(right-k) / float64(right-center)
		}

		filters[m-1] = filter
	}

	return &FilterBank{
		Key:     key,
		Filters: filters,
		Bins:    bins,
	}, nil
}

// Apply returns the per-filter dot products with a power spectrum
func (fb *FilterBank) Apply(powerSpectrum []float64) []float64 {
	energies := make([]float64, len(fb.Filters))

	for m, filter := range fb.Filters {
		sum := 0.0
		for k := 0; k < len(filter) && k < len(powerSpectrum); k++ {
			sum += powerSpectrum[k] * filter[k]
		}
		energies[m] = sum
	}

	return energies
}

// FilterBankCache memoizes filter banks by parameter set. Lookups take a
// read lock; misses are built once per key through singleflight and
// published under the write lock.
type FilterBankCache struct {
	mu     sync.RWMutex
	banks  map[FilterBankKey]*FilterBank
	group  singleflight.Group
	mel    *MelScale
	builds int
}

// NewFilterBankCache creates an empty cache
func NewFilterBankCache() *FilterBankCache {
	return &FilterBankCache{
		banks: make(map[FilterBankKey]*FilterBank),
		mel:   NewMelScale(),
	}
}

var defaultFilterBankCache = NewFilterBankCache()

// DefaultFilterBankCache returns the process-wide cache shared by extractors
func DefaultFilterBankCache() *FilterBankCache {
	return defaultFilterBankCache
}

// Get returns the filter bank for key, building it on first use
func (c *FilterBankCache) Get(key FilterBankKey) (*FilterBank, error) {
	c.mu.RLock()
	bank, ok := c.banks[key]
	c.mu.RUnlock()
	if ok {
		return bank, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		c.mu.RLock()
		existing, ok := c.banks[key]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}

		built, err := c.mel.CreateMelFilterBank(key.NumFilters, key.NFFT, key.SampleRate, key.LowFreq, key.HighFreq)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.banks[key] = built
		c.builds++
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*FilterBank), nil
}

// Len returns the number of cached filter banks
func (c *FilterBankCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.banks)
}

// Builds returns how many filter banks were constructed by this cache
func (c *FilterBankCache) Builds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.builds
}

// Reset drops every cached filter bank and zeroes the build count
func (c *FilterBankCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banks = make(map[FilterBankKey]*FilterBank)
	c.builds = 0
}
