package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/RyanBlaney/sonido-mfcc/features/config"
	"github.com/RyanBlaney/sonido-mfcc/logging"
)

// CachedFeatures is the value stored per file and preset
type CachedFeatures struct {
	Vector     []float64 `msgpack:"vector"`
	FrameCount int       `msgpack:"frame_count"`
	SampleRate int       `msgpack:"sample_rate"`
}

// CacheOptions configures the feature cache
type CacheOptions struct {
	// Dir holds badger's data files. Required unless InMemory is set.
	Dir string

	// InMemory keeps everything in RAM, for tests
	InMemory bool

	Logger logging.Logger
}

// Cache stores extracted vectors keyed by file content, preset and decoder
// settings, so a
// rebuilt dataset only extracts files it has not seen before
type Cache struct {
	db     *badger.DB
	logger logging.Logger
}

// OpenCache opens or creates a feature cache
func OpenCache(opts CacheOptions) (*Cache, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("feature cache directory is required for on-disk mode")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.WithFields(logging.Fields{
			"component": "feature_cache",
		})
	}

	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(logging.NewBadgerLogger(logger))
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature cache: %w", err)
	}

	return &Cache{db: db, logger: logger}, nil
}

// CacheKey derives the key for a file's raw bytes under a preset and a
// decoder output signature (see transcode.Decoder.OutputSignature)
func CacheKey(data []byte, preset config.Preset, decoderSignature string) []byte {
	sum := sha256.Sum256(data)
	return []byte("mfcc/" + string(preset) + "/" + decoderSignature + "/" + hex.EncodeToString(sum[:]))
}

// Get returns the cached features for key. A miss returns ok == false and
// no error.
func (c *Cache) Get(key []byte) (*CachedFeatures, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var cached CachedFeatures
	if err := msgpack.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return &cached, true, nil
}

// Put stores features under key
func (c *Cache) Put(key []byte, value *CachedFeatures) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
}

// Len counts the cached entries
func (c *Cache) Len() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close flushes and closes the underlying store
func (c *Cache) Close() error {
	return c.db.Close()
}
