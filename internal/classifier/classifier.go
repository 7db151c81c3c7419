// Package classifier assigns one category label to a mail message by
// comparing its embedding against a fixed set of pre-embedded category
// descriptions.
package classifier

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"mailsort/internal/models"
)

// Embedder is the surface the classifier needs from an embedding provider.
type Embedder interface {
	ModelName() string
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

// Labeler is implemented by both the semantic Classifier and the
// RuleClassifier so callers can switch between them through configuration.
type Labeler interface {
	Classify(ctx context.Context, msg models.Message) (models.ClassificationResult, error)
	ClassifyBatch(ctx context.Context, msgs []models.Message) ([]models.ClassificationResult, error)
}

// Classifier scores messages against a fixed category table. The table is
// write-once at construction and read-only afterwards, so one instance is
// safe for concurrent use without locking.
type Classifier struct {
	embedder   Embedder
	categories []models.Category // sorted by name, the tie-break order
}

// New builds a Classifier by embedding every category description once with
// the given embedder. Construction is all-or-nothing: if any description
// fails to embed, no partially built classifier is returned.
//
// The same embedder instance must later serve Classify; category and message
// vectors from different models are not comparable.
func New(ctx context.Context, embedder Embedder, descriptions map[string]string) (*Classifier, error) {
	if len(descriptions) == 0 {
		return nil, models.ErrEmptyCategorySet
	}

	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	texts := make([]string, len(names))
	for i, name := range names {
		texts[i] = descriptions[name]
	}

	vecs, err := embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding category descriptions: %w", err)
	}

	categories := make([]models.Category, len(names))
	for i, name := range names {
		categories[i] = models.Category{
			Name:        name,
			Description: texts[i],
			Embedding:   vecs[i],
		}
	}

	log.Debugf("Classifier ready with %d categories (model %s)", len(categories), embedder.ModelName())

	return &Classifier{embedder: embedder, categories: categories}, nil
}

// Categories returns a copy of the category table in evaluation order.
func (c *Classifier) Categories() []models.Category {
	out := make([]models.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// FormatMessage flattens a message into the single string that gets embedded:
// sender, subject and snippet in that order, joined by ". " with empty fields
// skipped.
//
// This formatting is a contract surface. Category scores depend on it, so any
// change here changes classification behavior for every caller.
func FormatMessage(m models.Message) string {
	parts := make([]string, 0, 3)
	for _, field := range []string{m.Sender, m.Subject, m.Snippet} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, ". ")
}

// Classify returns the category whose description is semantically closest to
// the message, with its cosine similarity score. Pure and idempotent; safe
// for concurrent callers.
func (c *Classifier) Classify(ctx context.Context, msg models.Message) (models.ClassificationResult, error) {
	vec, err := c.embedder.GenerateEmbedding(ctx, FormatMessage(msg))
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("embedding message: %w", err)
	}
	return c.best(vec), nil
}

// ClassifyBatch classifies several messages with a single batch embedding
// call. Results are index-aligned with msgs.
func (c *Classifier) ClassifyBatch(ctx context.Context, msgs []models.Message) ([]models.ClassificationResult, error) {
	if len(msgs) == 0 {
		return []models.ClassificationResult{}, nil
	}

	texts := make([]string, len(msgs))
	for i, msg := range msgs {
		texts[i] = FormatMessage(msg)
	}
	vecs, err := c.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding messages: %w", err)
	}

	results := make([]models.ClassificationResult, len(msgs))
	for i, vec := range vecs {
		results[i] = c.best(vec)
	}
	return results, nil
}

// best picks the highest-scoring category. Categories are evaluated in name
// order and only a strictly greater score displaces the current winner, so
// exact ties resolve to the lexicographically first name and results stay
// reproducible.
func (c *Classifier) best(vec pgvector.Vector) models.ClassificationResult {
	v := vec.Slice()
	result := models.ClassificationResult{Label: c.categories[0].Name, Score: cosineSimilarity(v, c.categories[0].Embedding.Slice())}
	for _, cat := range c.categories[1:] {
		if score := cosineSimilarity(v, cat.Embedding.Slice()); score > result.Score {
			result = models.ClassificationResult{Label: cat.Name, Score: score}
		}
	}
	return result
}

// cosineSimilarity returns dot(a,b) / (|a| * |b|), defined as 0 when either
// vector has zero norm so degenerate (e.g. empty) input never divides by
// zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Labeler = (*Classifier)(nil)
