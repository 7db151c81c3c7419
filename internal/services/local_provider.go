package services

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// NewLocalProvider creates a provider backed by a local OpenAI-compatible
// embedding server (Ollama, llama.cpp, LocalAI and the like). This is the
// no-network-key path: the model runs on the operator's own machine, so the
// dimension must come from configuration instead of a known model table.
func NewLocalProvider(baseURL, modelName string, dimension int) (*OpenAIProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("local embedding server base URL is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("local embedding provider needs an explicit dimension, got %d", dimension)
	}

	// Local servers generally ignore the API key but the client requires one.
	cfg := openai.DefaultConfig("local")
	cfg.BaseURL = baseURL

	log.Infof("Local embedding provider initialized against %s with model %s (dimension %d)", baseURL, modelName, dimension)

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   "local",
		model:  openai.EmbeddingModel(modelName),
		dim:    dimension,
	}, nil
}
