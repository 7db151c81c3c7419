package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/models"
)

// LazyProvider defers construction of an expensive provider (network client,
// local model load) until the first embedding call. Initialization runs
// exactly once for the process lifetime; concurrent first calls block on the
// same sync.Once, so two requests can never race two model loads. There is no
// teardown: the initialized provider is held until the process exits.
type LazyProvider struct {
	name      string
	modelName string
	dim       int
	construct func() (EmbeddingProvider, error)

	once     sync.Once
	provider EmbeddingProvider
	err      error
}

// NewLazyProvider wraps construct. Name, model and dimension are declared up
// front so the wrapper can answer metadata queries (dimension agreement
// checks, cache keys) without forcing the load.
func NewLazyProvider(name, modelName string, dim int, construct func() (EmbeddingProvider, error)) *LazyProvider {
	return &LazyProvider{
		name:      name,
		modelName: modelName,
		dim:       dim,
		construct: construct,
	}
}

func (l *LazyProvider) get() (EmbeddingProvider, error) {
	l.once.Do(func() {
		log.Debugf("Initializing embedding provider %s (model %s)", l.name, l.modelName)
		l.provider, l.err = l.construct()
		if l.err != nil {
			l.err = fmt.Errorf("initializing provider %s: %w: %v", l.name, models.ErrModelUnavailable, l.err)
		}
	})
	return l.provider, l.err
}

func (l *LazyProvider) Name() string      { return l.name }
func (l *LazyProvider) ModelName() string { return l.modelName }
func (l *LazyProvider) Dimension() int    { return l.dim }

func (l *LazyProvider) Status() ProviderStatus {
	p, err := l.get()
	if err != nil {
		return ProviderStatusDisabled
	}
	return p.Status()
}

func (l *LazyProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	p, err := l.get()
	if err != nil {
		return pgvector.Vector{}, err
	}
	return p.GenerateEmbedding(ctx, text)
}

func (l *LazyProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	p, err := l.get()
	if err != nil {
		return nil, err
	}
	return p.GenerateEmbeddings(ctx, texts)
}

var _ EmbeddingProvider = (*LazyProvider)(nil)
