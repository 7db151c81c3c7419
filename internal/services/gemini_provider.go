package services

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"mailsort/internal/models"
)

// GeminiProvider generates embeddings through the Google Gemini API.
type GeminiProvider struct {
	client         *genai.Client
	embeddingModel string
	dim            int
}

// NewGeminiProvider creates a new Gemini embedding provider. An empty apiKey
// falls back to GEMINI_API_KEY; if neither is set the provider is disabled.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		log.Warn("Gemini API key not provided. Gemini provider will be disabled.")
		return &GeminiProvider{client: nil}, nil
	}

	var dim int
	switch modelName {
	case "models/embedding-001", "models/text-embedding-004":
		dim = 768
	default:
		log.Warnf("Unknown Gemini embedding model '%s', defaulting dimension to 768. Accuracy may be affected.", modelName)
		dim = 768
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w: %v", models.ErrModelUnavailable, err)
	}

	log.Infof("Gemini provider initialized with model %s (dimension %d)", modelName, dim)

	return &GeminiProvider{
		client:         client,
		embeddingModel: modelName,
		dim:            dim,
	}, nil
}

func (p *GeminiProvider) Name() string      { return "gemini" }
func (p *GeminiProvider) ModelName() string { return p.embeddingModel }
func (p *GeminiProvider) Dimension() int    { return p.dim }

func (p *GeminiProvider) Status() ProviderStatus {
	if p.client == nil {
		return ProviderStatusDisabled
	}
	return ProviderStatusActive
}

func (p *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if p.client == nil {
		return pgvector.Vector{}, fmt.Errorf("Gemini provider is not initialized (missing API key): %w", models.ErrModelUnavailable)
	}
	if text == "" {
		return pgvector.NewVector(make([]float32, p.dim)), nil
	}
	if !utf8.ValidString(text) {
		return pgvector.Vector{}, fmt.Errorf("input is not valid UTF-8: %w", models.ErrEncoding)
	}

	em := p.client.EmbeddingModel(p.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("Gemini API error generating embedding: %w: %v", models.ErrModelUnavailable, err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return pgvector.Vector{}, fmt.Errorf("Gemini API returned no embedding data")
	}
	if len(res.Embedding.Values) != p.dim {
		return pgvector.Vector{}, fmt.Errorf("Gemini API returned unexpected embedding dimension: got %d, want %d", len(res.Embedding.Values), p.dim)
	}

	return pgvector.NewVector(res.Embedding.Values), nil
}

func (p *GeminiProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if p.client == nil {
		return nil, fmt.Errorf("Gemini provider is not initialized (missing API key): %w", models.ErrModelUnavailable)
	}
	if len(texts) == 0 {
		return []pgvector.Vector{}, nil
	}

	em := p.client.EmbeddingModel(p.embeddingModel)
	results := make([]pgvector.Vector, len(texts))

	// One batch request for all non-empty texts; empty inputs keep the zero
	// vector to stay aligned by index.
	batch := em.NewBatch()
	batchIndices := make([]int, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			results[i] = pgvector.NewVector(make([]float32, p.dim))
			continue
		}
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("input at index %d is not valid UTF-8: %w", i, models.ErrEncoding)
		}
		batch.AddContent(genai.Text(text))
		batchIndices = append(batchIndices, i)
	}
	if len(batchIndices) == 0 {
		return results, nil
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error generating batch embeddings: %w: %v", models.ErrModelUnavailable, err)
	}
	if res == nil || len(res.Embeddings) != len(batchIndices) {
		return nil, fmt.Errorf("Gemini API returned unexpected batch size")
	}

	for j, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) != p.dim {
			return nil, fmt.Errorf("Gemini API returned unexpected embedding dimension in batch at index %d", batchIndices[j])
		}
		results[batchIndices[j]] = pgvector.NewVector(emb.Values)
	}

	return results, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

var _ EmbeddingProvider = (*GeminiProvider)(nil)
