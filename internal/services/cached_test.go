package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsort/internal/store"
)

func newTestCache(t *testing.T) store.EmbeddingCache {
	t.Helper()
	cache, err := store.NewSQLiteEmbeddingCache(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCachedProviderMetadataPassthrough(t *testing.T) {
	inner := newFakeProvider("fake", 4)
	cached := NewCachedProvider(inner, newTestCache(t))

	assert.Equal(t, "fake", cached.Name())
	assert.Equal(t, "fake-model", cached.ModelName())
	assert.Equal(t, 4, cached.Dimension())
	assert.Equal(t, ProviderStatusActive, cached.Status())
}

func TestCachedProviderSingleHit(t *testing.T) {
	inner := newFakeProvider("fake", 4)
	cached := NewCachedProvider(inner, newTestCache(t))
	ctx := context.Background()

	first, err := cached.GenerateEmbedding(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.callCount())

	second, err := cached.GenerateEmbedding(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.callCount(), "second call must be served from cache")
	assert.Equal(t, first.Slice(), second.Slice())

	// A different text is a miss.
	_, err = cached.GenerateEmbedding(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestCachedProviderBatchPartialHits(t *testing.T) {
	inner := newFakeProvider("fake", 4)
	cached := NewCachedProvider(inner, newTestCache(t))
	ctx := context.Background()

	// Warm the cache with one of the three texts.
	warm, err := cached.GenerateEmbedding(ctx, "bb")
	require.NoError(t, err)
	require.Equal(t, 1, inner.callCount())

	vecs, err := cached.GenerateEmbeddings(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, 2, inner.callCount(), "only the misses go to the provider")

	// Results stay index-aligned regardless of the hit/miss split.
	assert.Equal(t, float32(1), vecs[0].Slice()[0])
	assert.Equal(t, warm.Slice(), vecs[1].Slice())
	assert.Equal(t, float32(3), vecs[2].Slice()[0])

	// Everything is cached now; a repeat batch never touches the provider.
	_, err = cached.GenerateEmbeddings(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.callCount())
}

func TestCachedProviderErrorNotCached(t *testing.T) {
	inner := newFakeProvider("fake", 4)
	inner.fail = true
	cached := NewCachedProvider(inner, newTestCache(t))
	ctx := context.Background()

	_, err := cached.GenerateEmbedding(ctx, "hello")
	require.Error(t, err)

	// Once the provider recovers, the same text embeds normally.
	inner.mu.Lock()
	inner.fail = false
	inner.mu.Unlock()

	vec, err := cached.GenerateEmbedding(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, float32(5), vec.Slice()[0])
}
