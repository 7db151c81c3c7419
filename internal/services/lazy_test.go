package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsort/internal/models"
)

func TestLazyProviderMetadataWithoutInit(t *testing.T) {
	var constructed int32
	lazy := NewLazyProvider("openai", "text-embedding-3-small", 1536, func() (EmbeddingProvider, error) {
		atomic.AddInt32(&constructed, 1)
		return newFakeProvider("openai", 1536), nil
	})

	assert.Equal(t, "openai", lazy.Name())
	assert.Equal(t, "text-embedding-3-small", lazy.ModelName())
	assert.Equal(t, 1536, lazy.Dimension())
	assert.Equal(t, int32(0), atomic.LoadInt32(&constructed), "metadata queries must not force initialization")
}

func TestLazyProviderInitializesOnce(t *testing.T) {
	var constructed int32
	inner := newFakeProvider("fake", 4)
	lazy := NewLazyProvider("fake", "fake-model", 4, func() (EmbeddingProvider, error) {
		atomic.AddInt32(&constructed, 1)
		return inner, nil
	})

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := lazy.GenerateEmbedding(context.Background(), "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed), "concurrent first calls must share one initialization")
	assert.Equal(t, goroutines, inner.callCount())
}

func TestLazyProviderInitFailureIsSticky(t *testing.T) {
	var constructed int32
	lazy := NewLazyProvider("fake", "fake-model", 4, func() (EmbeddingProvider, error) {
		atomic.AddInt32(&constructed, 1)
		return nil, errors.New("model file missing")
	})

	_, err := lazy.GenerateEmbedding(context.Background(), "hello")
	require.ErrorIs(t, err, models.ErrModelUnavailable)

	// The failure is remembered; later calls do not retry construction.
	_, err = lazy.GenerateEmbeddings(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&constructed))
	assert.Equal(t, ProviderStatusDisabled, lazy.Status())
}
