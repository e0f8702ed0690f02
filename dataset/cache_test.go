package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-mfcc/features/config"
	"github.com/RyanBlaney/sonido-mfcc/logging"
)

// newMemoryCache opens an in-memory badger cache for testing
func newMemoryCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(CacheOptions{InMemory: true, Logger: &logging.NoOpLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheKey(t *testing.T) {
	const signature = "first-0hz-0s"
	a := CacheKey([]byte("audio bytes"), config.PresetSimple, signature)
	b := CacheKey([]byte("audio bytes"), config.PresetSimple, signature)
	assert.Equal(t, a, b)
	assert.True(t, bytes.HasPrefix(a, []byte("mfcc/simple/first-0hz-0s/")))
	assert.Len(t, a, len("mfcc/simple/first-0hz-0s/")+64)

	assert.NotEqual(t, a, CacheKey([]byte("audio bytes"), config.PresetEnhanced, signature))
	assert.NotEqual(t, a, CacheKey([]byte("other bytes"), config.PresetSimple, signature))
	assert.NotEqual(t, a, CacheKey([]byte("audio bytes"), config.PresetSimple, "average-0hz-0s"))
}

func TestCacheGetPut(t *testing.T) {
	cache := newMemoryCache(t)
	key := CacheKey([]byte("x"), config.PresetSimple, "first-0hz-0s")

	_, ok, err := cache.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	stored := &CachedFeatures{Vector: []float64{0.5, -1.25, 3}, FrameCount: 12, SampleRate: 22050}
	require.NoError(t, cache.Put(key, stored))

	got, ok, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stored, got)

	n, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpenCacheRequiresDir(t *testing.T) {
	_, err := OpenCache(CacheOptions{})
	assert.Error(t, err)
}

func TestCachePersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey([]byte("y"), config.PresetEnhanced, "first-0hz-0s")

	cache, err := OpenCache(CacheOptions{Dir: dir, Logger: &logging.NoOpLogger{}})
	require.NoError(t, err)
	require.NoError(t, cache.Put(key, &CachedFeatures{Vector: []float64{1, 2}}))
	require.NoError(t, cache.Close())

	reopened, err := OpenCache(CacheOptions{Dir: dir, Logger: &logging.NoOpLogger{}})
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got.Vector)
}
