package models

import (
	"github.com/pgvector/pgvector-go"
)

// Message is a single mail item as handed over by the fetch layer.
// All three fields are plain strings; the snippet may be empty or truncated.
// Messages are transient: the classifier never stores them.
type Message struct {
	Sender  string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// Category pairs a label with the human-written description that anchors it
// in embedding space. The embedding is computed once from the description at
// classifier construction and never changes afterwards.
//
// All category embeddings must come from the same embedding model and
// configuration as the message embeddings they are compared against. Mixing
// model versions produces meaningless similarity scores; callers own this
// precondition, it is not checked at runtime.
type Category struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Embedding   pgvector.Vector `json:"-"`
}

// ClassificationResult is the outcome of classifying one message. Label is
// always one of the configured category names; Score is the cosine similarity
// that won.
type ClassificationResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
