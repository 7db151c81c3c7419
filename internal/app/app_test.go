package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailsort/internal/config"
)

func rulesConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Categorization.Type = "rules"
	cfg.Categories = config.DefaultCategories
	cfg.Gmail.MaxResults = 25
	cfg.Redis.Address = "localhost:6379"
	cfg.Worker.Concurrency = 5
	cfg.Worker.Queues = map[string]int{"default": 1}
	return cfg
}

func TestNewAppRulesMode(t *testing.T) {
	a, err := NewApp(context.Background(), rulesConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Rules)
	assert.Same(t, a.Rules, a.Labeler, "rules classifier serves as the labeler")
	assert.Nil(t, a.Classifier)
	assert.Nil(t, a.Embedding, "rule-based mode needs no embedding provider")
}

func TestNewAppRulesModeWithCache(t *testing.T) {
	cfg := rulesConfig(t)
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Cache)
	assert.NoError(t, a.Cache.Ping(context.Background()))
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := rulesConfig(t)
	cfg.Categorization.Type = "nonsense"

	_, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewAppSemanticWithoutProviders(t *testing.T) {
	cfg := rulesConfig(t)
	cfg.Categorization.Type = "semantic"

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider")
}

func TestOpenAIDimension(t *testing.T) {
	assert.Equal(t, 1536, openAIDimension("text-embedding-3-small"))
	assert.Equal(t, 3072, openAIDimension("text-embedding-3-large"))
	assert.Equal(t, 1536, openAIDimension("anything-else"))
}
