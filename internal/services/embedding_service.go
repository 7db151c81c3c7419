package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/models"
)

// NewFallbackEmbeddingService wires the given providers behind one facade.
// All providers must report the same dimension; mixed-dimension vectors would
// silently break every similarity comparison downstream.
func NewFallbackEmbeddingService(providers []EmbeddingProvider, strategy RetryStrategy) (*FallbackEmbeddingService, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one embedding provider is required: %w", models.ErrModelUnavailable)
	}
	if strategy == nil {
		strategy = &SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 100}
	}
	dim := providers[0].Dimension()
	for i := 1; i < len(providers); i++ {
		if providers[i].Dimension() != dim {
			return nil, fmt.Errorf("all embedding providers must have the same dimension (provider %s has %d, expected %d)",
				providers[i].Name(), providers[i].Dimension(), dim)
		}
	}

	return &FallbackEmbeddingService{
		Providers:     providers,
		RetryStrategy: strategy,
	}, nil
}

// Dimension returns the dimension shared by all providers (enforced by the
// constructor).
func (s *FallbackEmbeddingService) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Providers) == 0 {
		return 0
	}
	return s.Providers[s.ActiveProvider].Dimension()
}

// GenerateEmbedding tries providers with retries until one succeeds or all
// have been cycled through.
func (s *FallbackEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := s.generate(ctx, []string{text}, func(ctx context.Context, p EmbeddingProvider) ([]pgvector.Vector, error) {
		vec, err := p.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		return []pgvector.Vector{vec}, nil
	})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

// GenerateEmbeddings is the batch variant; a single provider call covers the
// whole slice so ordering is preserved.
func (s *FallbackEmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	return s.generate(ctx, texts, func(ctx context.Context, p EmbeddingProvider) ([]pgvector.Vector, error) {
		vecs, err := p.GenerateEmbeddings(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("provider %s returned mismatched vector count (%d != %d)", p.Name(), len(vecs), len(texts))
		}
		return vecs, nil
	})
}

func (s *FallbackEmbeddingService) generate(ctx context.Context, texts []string, call func(context.Context, EmbeddingProvider) ([]pgvector.Vector, error)) ([]pgvector.Vector, error) {
	s.mu.RLock()
	initialProviderIndex := s.ActiveProvider
	numProviders := len(s.Providers)
	s.mu.RUnlock()
	if numProviders == 0 {
		return nil, fmt.Errorf("no embedding providers configured: %w", models.ErrModelUnavailable)
	}

	var lastErr error
	attempt := 0

	for {
		s.mu.RLock()
		provider := s.Providers[s.ActiveProvider]
		s.mu.RUnlock()

		vecs, err := call(ctx, provider)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during embedding generation: %w", ctx.Err())
		}
		if err == nil {
			return vecs, nil
		}

		lastErr = fmt.Errorf("provider %s failed: %w", provider.Name(), err)
		log.Warnf("Embedding provider %s failed (batch of %d): %v", provider.Name(), len(texts), err)

		backoffMs := s.RetryStrategy.NextBackoff(attempt)
		if backoffMs < 0 {
			// Exhausted retries on this provider; rotate to the next one.
			s.mu.Lock()
			next := (s.ActiveProvider + 1) % numProviders
			if next == initialProviderIndex {
				s.mu.Unlock()
				return nil, fmt.Errorf("all embedding providers failed: %w (last: %v)", models.ErrModelUnavailable, lastErr)
			}
			s.ActiveProvider = next
			log.Warnf("Switching active embedding provider to %s", s.Providers[next].Name())
			s.mu.Unlock()
			attempt = 0
			continue
		}

		select {
		case <-time.After(time.Duration(backoffMs) * time.Millisecond):
			attempt++
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled while waiting to retry: %w", ctx.Err())
		}
	}
}
