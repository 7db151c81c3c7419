package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsort/internal/models"
)

// fakeProvider is a controllable in-memory provider for service tests. The
// returned vector encodes the input length in its first component so tests
// can tell results apart.
type fakeProvider struct {
	mu    sync.Mutex
	name  string
	model string
	dim   int
	fail  bool
	calls int
}

func newFakeProvider(name string, dim int) *fakeProvider {
	return &fakeProvider{name: name, model: "fake-model", dim: dim}
}

func (f *fakeProvider) Name() string           { return f.name }
func (f *fakeProvider) ModelName() string      { return f.model }
func (f *fakeProvider) Dimension() int         { return f.dim }
func (f *fakeProvider) Status() ProviderStatus { return ProviderStatusActive }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := f.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

func (f *fakeProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()

	if fail {
		return nil, errors.New("fake provider down")
	}
	out := make([]pgvector.Vector, len(texts))
	for i, t := range texts {
		vec := make([]float32, f.dim)
		vec[0] = float32(len(t))
		out[i] = pgvector.NewVector(vec)
	}
	return out, nil
}

// noRetry rotates to the next provider after a single failure, keeping tests
// fast.
var noRetry = &SimpleRetryStrategy{MaxAttempts: 0}

func TestNewFallbackEmbeddingServiceRequiresProviders(t *testing.T) {
	_, err := NewFallbackEmbeddingService(nil, noRetry)
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestNewFallbackEmbeddingServiceRejectsMixedDimensions(t *testing.T) {
	_, err := NewFallbackEmbeddingService([]EmbeddingProvider{
		newFakeProvider("a", 4),
		newFakeProvider("b", 8),
	}, noRetry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same dimension")
}

func TestFallbackServiceHappyPath(t *testing.T) {
	p := newFakeProvider("a", 4)
	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{p}, noRetry)
	require.NoError(t, err)

	assert.Equal(t, "a", svc.Name())
	assert.Equal(t, "fake-model", svc.ModelName())
	assert.Equal(t, 4, svc.Dimension())
	assert.Equal(t, ProviderStatusActive, svc.Status())

	vec, err := svc.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, float32(5), vec.Slice()[0])

	vecs, err := svc.GenerateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(2), vecs[1].Slice()[0])
}

func TestFallbackServiceRotatesOnFailure(t *testing.T) {
	broken := newFakeProvider("broken", 4)
	broken.fail = true
	healthy := newFakeProvider("healthy", 4)

	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{broken, healthy}, noRetry)
	require.NoError(t, err)

	vec, err := svc.GenerateEmbedding(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, float32(2), vec.Slice()[0])

	assert.Equal(t, 1, broken.callCount())
	assert.Equal(t, 1, healthy.callCount())
	assert.Equal(t, "healthy", svc.Name(), "rotation should stick for later calls")

	// Subsequent calls go straight to the healthy provider.
	_, err = svc.GenerateEmbedding(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, 1, broken.callCount())
}

func TestFallbackServiceAllProvidersFail(t *testing.T) {
	a := newFakeProvider("a", 4)
	a.fail = true
	b := newFakeProvider("b", 4)
	b.fail = true

	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{a, b}, noRetry)
	require.NoError(t, err)

	_, err = svc.GenerateEmbedding(context.Background(), "hi")
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
	assert.Equal(t, 1, a.callCount())
	assert.Equal(t, 1, b.callCount())
}

func TestFallbackServiceContextCancellation(t *testing.T) {
	p := newFakeProvider("a", 4)
	p.fail = true
	svc, err := NewFallbackEmbeddingService([]EmbeddingProvider{p},
		&SimpleRetryStrategy{MaxAttempts: 5, BaseDelayMs: 1000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.GenerateEmbedding(ctx, "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimpleRetryStrategyBackoff(t *testing.T) {
	s := &SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 100}
	assert.Equal(t, int64(100), s.NextBackoff(0))
	assert.Equal(t, int64(200), s.NextBackoff(1))
	assert.Equal(t, int64(400), s.NextBackoff(2))
	assert.Equal(t, int64(-1), s.NextBackoff(3), "exhausted attempts stop retrying")

	capped := &SimpleRetryStrategy{MaxAttempts: 100, BaseDelayMs: 10000}
	assert.Equal(t, int64(30000), capped.NextBackoff(5), "backoff is capped at 30s")
}
