package services

import (
	"context"
	"sync"

	"github.com/pgvector/pgvector-go"
)

// ProviderStatus describes whether a provider can currently serve requests.
type ProviderStatus string

const (
	ProviderStatusActive   ProviderStatus = "active"
	ProviderStatusDisabled ProviderStatus = "disabled"
)

// EmbeddingProvider turns text into fixed-dimension vectors.
//
// Embeddings are deterministic at inference time: two calls with identical
// input text yield the same vector. Providers do not normalize vectors; that
// is the caller's concern. All providers wired into one process must agree on
// model and dimension, otherwise similarity scores between their vectors are
// meaningless.
type EmbeddingProvider interface {
	Name() string
	ModelName() string
	Status() ProviderStatus
	Dimension() int
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// RetryStrategy decides how long to wait before re-trying a failed provider.
// A negative return means stop retrying at this attempt.
type RetryStrategy interface {
	NextBackoff(attempt int) int64 // ms
}

// SimpleRetryStrategy provides basic exponential backoff capped at 30s.
type SimpleRetryStrategy struct {
	MaxAttempts int
	BaseDelayMs int64
}

func (s *SimpleRetryStrategy) NextBackoff(attempt int) int64 {
	if s.MaxAttempts <= 0 || attempt >= s.MaxAttempts {
		return -1
	}
	backoff := s.BaseDelayMs * (1 << attempt)
	const maxDelay = int64(30000)
	if backoff > maxDelay {
		backoff = maxDelay
	}
	return backoff
}

// FallbackEmbeddingService fronts an ordered list of providers and rotates to
// the next one when the active provider keeps failing. It itself satisfies
// EmbeddingProvider, so callers never see the rotation.
type FallbackEmbeddingService struct {
	Providers      []EmbeddingProvider
	ActiveProvider int
	RetryStrategy  RetryStrategy
	mu             sync.RWMutex
}

func (s *FallbackEmbeddingService) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 {
		return ""
	}
	return s.Providers[s.ActiveProvider].Name()
}

func (s *FallbackEmbeddingService) ModelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 {
		return ""
	}
	return s.Providers[s.ActiveProvider].ModelName()
}

func (s *FallbackEmbeddingService) Status() ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 {
		return ProviderStatusDisabled
	}
	return s.Providers[s.ActiveProvider].Status()
}

var _ EmbeddingProvider = (*FallbackEmbeddingService)(nil)
