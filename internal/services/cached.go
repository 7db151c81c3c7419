package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/store"
)

// CachedProvider checks the embedding cache before calling the wrapped
// provider. Entries are keyed by (model name, sha256 of the text), so a cache
// populated by one model version is never read by another. Cache failures are
// logged and ignored; the provider call is the source of truth.
type CachedProvider struct {
	inner EmbeddingProvider
	cache store.EmbeddingCache
}

func NewCachedProvider(inner EmbeddingProvider, cache store.EmbeddingCache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache}
}

func (c *CachedProvider) Name() string           { return c.inner.Name() }
func (c *CachedProvider) ModelName() string      { return c.inner.ModelName() }
func (c *CachedProvider) Dimension() int         { return c.inner.Dimension() }
func (c *CachedProvider) Status() ProviderStatus { return c.inner.Status() }

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	hash := hashText(text)
	if vec, ok, err := c.cache.Get(ctx, c.ModelName(), hash); err != nil {
		log.Warnf("Embedding cache lookup failed: %v", err)
	} else if ok {
		return vec, nil
	}

	vec, err := c.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return pgvector.Vector{}, err
	}
	if err := c.cache.Put(ctx, c.ModelName(), hash, vec); err != nil {
		log.Warnf("Embedding cache store failed: %v", err)
	}
	return vec, nil
}

func (c *CachedProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	results := make([]pgvector.Vector, len(texts))
	hashes := make([]string, len(texts))

	missTexts := make([]string, 0, len(texts))
	missIndices := make([]int, 0, len(texts))
	for i, text := range texts {
		hashes[i] = hashText(text)
		vec, ok, err := c.cache.Get(ctx, c.ModelName(), hashes[i])
		if err != nil {
			log.Warnf("Embedding cache lookup failed: %v", err)
		}
		if err == nil && ok {
			results[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIndices = append(missIndices, i)
	}
	if len(missTexts) == 0 {
		return results, nil
	}

	vecs, err := c.inner.GenerateEmbeddings(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIndices {
		results[i] = vecs[j]
		if err := c.cache.Put(ctx, c.ModelName(), hashes[i], vecs[j]); err != nil {
			log.Warnf("Embedding cache store failed: %v", err)
		}
	}
	return results, nil
}

var _ EmbeddingProvider = (*CachedProvider)(nil)
