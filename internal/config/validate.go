package config

import (
	"errors"
	"fmt"
)

// Validate checks the loaded configuration for contradictions that would
// only surface later as confusing runtime failures.
func (c *Config) Validate() error {
	switch c.Categorization.Type {
	case "semantic", "rules":
	default:
		return fmt.Errorf("categorization.type must be \"semantic\" or \"rules\", got %q", c.Categorization.Type)
	}

	if c.Categorization.Type == "semantic" {
		if c.Embedding.OpenaiApiKey == "" && c.Embedding.GoogleApiKey == "" && c.Embedding.LocalBaseURL == "" {
			return errors.New("semantic categorization needs at least one embedding provider (embedding.openai_api_key, embedding.google_api_key or embedding.local_base_url)")
		}
	}

	// The local server's model dimension cannot be inferred from the model
	// name the way it can for the hosted providers.
	if c.Embedding.LocalBaseURL != "" && c.Embedding.Dimension <= 0 {
		return errors.New("embedding.dimension is required when embedding.local_base_url is set")
	}

	for name, description := range c.Categories {
		if name == "" {
			return errors.New("categories must not contain an empty name")
		}
		if description == "" {
			return fmt.Errorf("category %q has an empty description", name)
		}
	}

	if c.Gmail.MaxResults <= 0 {
		return errors.New("gmail.max_results must be a positive integer")
	}

	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues must not contain an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker queue %q must have a positive priority", name)
		}
	}

	return nil
}
