package services

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/models"
)

// OpenAIProvider generates embeddings through the OpenAI API or any
// OpenAI-compatible endpoint (see NewLocalProvider).
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  openai.EmbeddingModel
	dim    int
}

// NewOpenAIProvider creates a new OpenAI embedding provider. An empty apiKey
// falls back to OPENAI_API_KEY; if neither is set the provider is disabled
// rather than failing construction.
func NewOpenAIProvider(apiKey, modelID string) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("OpenAI API key not provided. OpenAI provider will be disabled.")
		return &OpenAIProvider{client: nil, name: "openai"}, nil
	}

	var dim int
	switch modelID {
	case string(openai.AdaEmbeddingV2):
		dim = 1536
	case "text-embedding-3-small":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	default:
		log.Warnf("Unknown OpenAI embedding model '%s', defaulting dimension to 1536. Accuracy may be affected.", modelID)
		dim = 1536
	}

	log.Infof("OpenAI provider initialized with model %s (dimension %d)", modelID, dim)

	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		name:   "openai",
		model:  openai.EmbeddingModel(modelID),
		dim:    dim,
	}, nil
}

func (p *OpenAIProvider) Name() string      { return p.name }
func (p *OpenAIProvider) ModelName() string { return string(p.model) }
func (p *OpenAIProvider) Dimension() int    { return p.dim }

func (p *OpenAIProvider) Status() ProviderStatus {
	if p.client == nil {
		return ProviderStatusDisabled
	}
	return ProviderStatusActive
}

func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := p.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

func (p *OpenAIProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if p.client == nil {
		return nil, fmt.Errorf("OpenAI provider is not initialized (missing API key): %w", models.ErrModelUnavailable)
	}
	if len(texts) == 0 {
		return []pgvector.Vector{}, nil
	}

	// Empty strings embed to the zero vector without a round trip; the API
	// rejects them and downstream cosine handling defines zero-norm as 0.
	validTexts := make([]string, 0, len(texts))
	originalIndices := make(map[int]int)
	for i, t := range texts {
		if t == "" {
			continue
		}
		if !utf8.ValidString(t) {
			return nil, fmt.Errorf("input at index %d is not valid UTF-8: %w", i, models.ErrEncoding)
		}
		originalIndices[len(validTexts)] = i
		validTexts = append(validTexts, t)
	}

	results := make([]pgvector.Vector, len(texts))
	for i := range results {
		results[i] = pgvector.NewVector(make([]float32, p.dim))
	}
	if len(validTexts) == 0 {
		return results, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: validTexts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error generating embeddings: %w: %v", models.ErrModelUnavailable, err)
	}
	if len(resp.Data) != len(validTexts) {
		return nil, fmt.Errorf("OpenAI API returned %d embeddings, expected %d", len(resp.Data), len(validTexts))
	}

	for i, data := range resp.Data {
		if len(data.Embedding) != p.dim {
			return nil, fmt.Errorf("OpenAI API returned unexpected embedding dimension: got %d, want %d at index %d", len(data.Embedding), p.dim, i)
		}
		results[originalIndices[i]] = pgvector.NewVector(data.Embedding)
	}

	return results, nil
}

var _ EmbeddingProvider = (*OpenAIProvider)(nil)
