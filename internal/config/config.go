package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DefaultCategories mirrors Gmail's tab definitions plus a custom Work
// category. The descriptions are the semantic anchors the classifier embeds;
// changing a description changes classification behavior.
var DefaultCategories = map[string]string{
	"Primary":    "Personal and important emails from people you know.",
	"Promotions": "Deals, offers, advertisements and other promotional emails.",
	"Social":     "Messages from social networks and media-sharing sites.",
	"Updates":    "Automated confirmations, notifications, statements and reminders.",
	"Forums":     "Messages from online groups, discussion boards and mailing lists.",
	"Work":       "Work-related emails from corporate or professional domains.",
}

type Config struct {
	Embedding struct {
		Model           string `mapstructure:"model"`
		OpenaiApiKey    string `mapstructure:"openai_api_key"`
		GoogleApiKey    string `mapstructure:"google_api_key"`
		GeminiModelName string `mapstructure:"gemini_model_name"`
		LocalBaseURL    string `mapstructure:"local_base_url"` // OpenAI-compatible local server (e.g. Ollama)
		LocalModelName  string `mapstructure:"local_model_name"`
		Dimension       int    `mapstructure:"dimension"`
	} `mapstructure:"embedding"`

	// Categories maps label name -> one-sentence description. Static
	// configuration: fixed at startup, not editable at runtime. Empty map
	// falls back to DefaultCategories.
	Categories map[string]string `mapstructure:"categories"`

	Categorization struct {
		Type string `mapstructure:"type"` // "semantic" (embeddings) or "rules" (keyword heuristics)
	} `mapstructure:"categorization"`

	Cache struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"` // SQLite file for the embedding cache
	} `mapstructure:"cache"`

	Gmail struct {
		CredentialsFile string `mapstructure:"credentials_file"`
		TokenFile       string `mapstructure:"token_file"`
		MaxResults      int64  `mapstructure:"max_results"`
		Query           string `mapstructure:"query"` // optional Gmail search query, e.g. "newer_than:7d"
	} `mapstructure:"gmail"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	// Bind the well-known key env vars directly so no prefix or naming
	// convention is needed.
	viper.BindEnv("embedding.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("embedding.google_api_key", "GEMINI_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env vars carry the day.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	if cfg.Categorization.Type == "" {
		cfg.Categorization.Type = "semantic"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.GeminiModelName == "" {
		cfg.Embedding.GeminiModelName = "models/embedding-001"
	}
	if cfg.Embedding.LocalModelName == "" {
		cfg.Embedding.LocalModelName = "all-minilm"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "mailsort-cache.db"
	}
	if cfg.Gmail.CredentialsFile == "" {
		cfg.Gmail.CredentialsFile = "credentials.json"
	}
	if cfg.Gmail.TokenFile == "" {
		cfg.Gmail.TokenFile = "token.json"
	}
	if cfg.Gmail.MaxResults <= 0 {
		cfg.Gmail.MaxResults = 25
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = 5
	}
	if len(cfg.Worker.Queues) == 0 {
		cfg.Worker.Queues = map[string]int{"default": 1}
	}
}
