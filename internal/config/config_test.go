package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSemanticConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Embedding.OpenaiApiKey = "sk-test"
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "semantic", cfg.Categorization.Type)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, int64(25), cfg.Gmail.MaxResults)
	assert.Equal(t, 5, cfg.Worker.Concurrency)
	assert.Equal(t, map[string]int{"default": 1}, cfg.Worker.Queues)
	assert.Equal(t, DefaultCategories, cfg.Categories)
}

func TestDefaultCategoriesComplete(t *testing.T) {
	for _, name := range []string{"Primary", "Promotions", "Social", "Updates", "Forums", "Work"} {
		desc, ok := DefaultCategories[name]
		require.True(t, ok, "missing default category %q", name)
		assert.NotEmpty(t, desc)
	}
}

func TestValidateAcceptsSemanticWithProvider(t *testing.T) {
	assert.NoError(t, validSemanticConfig().Validate())
}

func TestValidateRejectsUnknownCategorizationType(t *testing.T) {
	cfg := validSemanticConfig()
	cfg.Categorization.Type = "magic"
	assert.Error(t, cfg.Validate())
}

func TestValidateSemanticNeedsProvider(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider")
}

func TestValidateRulesNeedsNoProvider(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Categorization.Type = "rules"
	assert.NoError(t, cfg.Validate())
}

func TestValidateLocalProviderNeedsDimension(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Embedding.LocalBaseURL = "http://localhost:11434/v1"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension")

	cfg.Embedding.Dimension = 384
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyCategoryDescription(t *testing.T) {
	cfg := validSemanticConfig()
	cfg.Categories = map[string]string{"Primary": ""}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadWorkerSettings(t *testing.T) {
	cfg := validSemanticConfig()
	cfg.Worker.Concurrency = 0
	assert.Error(t, cfg.Validate())

	cfg = validSemanticConfig()
	cfg.Worker.Queues = map[string]int{"default": 0}
	assert.Error(t, cfg.Validate())
}
