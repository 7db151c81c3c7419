package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"mailsort/internal/classifier"
	"mailsort/internal/config"
	"mailsort/internal/services"
	"mailsort/internal/store"
)

// App holds the initialized pieces of the application. The Labeler is shared
// read-only across callers: one instance serves every CLI invocation or HTTP
// request concurrently.
type App struct {
	Config *config.Config

	Embedding services.EmbeddingProvider
	Cache     store.EmbeddingCache
	JobClient store.JobClient

	// Labeler is whichever classifier the config selected. Classifier is
	// additionally set when the semantic engine is active, Rules when the
	// keyword engine is.
	Labeler    classifier.Labeler
	Classifier *classifier.Classifier
	Rules      *classifier.RuleClassifier
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app := &App{Config: cfg}

	if err := app.initCache(); err != nil {
		return nil, err
	}
	if err := app.initEmbeddingService(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initLabeler(ctx); err != nil {
		app.Close()
		return nil, err
	}
	app.JobClient = store.NewAsynqJobClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)

	log.Debug("Application initialization complete.")
	return app, nil
}

func (a *App) initCache() error {
	if !a.Config.Cache.Enabled {
		return nil
	}
	cache, err := store.NewSQLiteEmbeddingCache(a.Config.Cache.Path)
	if err != nil {
		return fmt.Errorf("init embedding cache: %w", err)
	}
	a.Cache = cache
	return nil
}

// initEmbeddingService assembles the provider chain: every configured
// provider wrapped lazily (nothing loads until the first embed call), the
// chain fronted by the fallback service, and the whole thing behind the
// cache when one is configured.
func (a *App) initEmbeddingService(ctx context.Context) error {
	cfg := a.Config
	var providers []services.EmbeddingProvider

	if cfg.Embedding.OpenaiApiKey != "" {
		providers = append(providers, services.NewLazyProvider(
			"openai", cfg.Embedding.Model, openAIDimension(cfg.Embedding.Model),
			func() (services.EmbeddingProvider, error) {
				return services.NewOpenAIProvider(cfg.Embedding.OpenaiApiKey, cfg.Embedding.Model)
			}))
	}
	if cfg.Embedding.GoogleApiKey != "" {
		providers = append(providers, services.NewLazyProvider(
			"gemini", cfg.Embedding.GeminiModelName, 768,
			func() (services.EmbeddingProvider, error) {
				return services.NewGeminiProvider(ctx, cfg.Embedding.GoogleApiKey, cfg.Embedding.GeminiModelName)
			}))
	}
	if cfg.Embedding.LocalBaseURL != "" {
		providers = append(providers, services.NewLazyProvider(
			"local", cfg.Embedding.LocalModelName, cfg.Embedding.Dimension,
			func() (services.EmbeddingProvider, error) {
				return services.NewLocalProvider(cfg.Embedding.LocalBaseURL, cfg.Embedding.LocalModelName, cfg.Embedding.Dimension)
			}))
	}

	if len(providers) == 0 {
		if cfg.Categorization.Type == "semantic" {
			return fmt.Errorf("no embedding providers configured")
		}
		// Rule-based mode never embeds; leave the service unset.
		return nil
	}

	retryStrategy := &services.SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 200}
	embedding, err := services.NewFallbackEmbeddingService(providers, retryStrategy)
	if err != nil {
		return fmt.Errorf("init embedding service: %w", err)
	}

	a.Embedding = embedding
	if a.Cache != nil {
		a.Embedding = services.NewCachedProvider(embedding, a.Cache)
	}
	return nil
}

func (a *App) initLabeler(ctx context.Context) error {
	switch a.Config.Categorization.Type {
	case "rules":
		a.Rules = classifier.NewRuleClassifier()
		a.Labeler = a.Rules
		log.Debug("Using rule-based classifier")
	default:
		c, err := classifier.New(ctx, a.Embedding, a.Config.Categories)
		if err != nil {
			return fmt.Errorf("init classifier: %w", err)
		}
		a.Classifier = c
		a.Labeler = c
		log.Debugf("Using semantic classifier (model %s)", a.Embedding.ModelName())
	}
	return nil
}

// openAIDimension mirrors the model table in the OpenAI provider so the lazy
// wrapper can answer Dimension() without forcing a client construction.
func openAIDimension(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

// Close releases what NewApp acquired. Safe on a partially initialized App.
func (a *App) Close() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.Warnf("Closing job client: %v", err)
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Warnf("Closing embedding cache: %v", err)
		}
	}
}
