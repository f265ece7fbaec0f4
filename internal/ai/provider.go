// Package ai builds the language model and embedder the agent and the
// re-ranker talk to.
package ai

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"

	"articlesearch/internal/config"
)

var ErrUnknownProvider = errors.New("unknown llm provider")

// Provider bundles the chat model and the embedder built from one config.
type Provider struct {
	model    llms.Model
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewProvider builds the chat model for cfg.Provider and an OpenAI-compatible
// embedder. Anthropic has no embeddings endpoint, so embeddings always go to
// the OpenAI-compatible API.
func NewProvider(cfg config.LLMConfig, embeddingAPIKey string) (*Provider, error) {
	logger := slog.Default().With("component", "ai-provider")

	model, err := newChatModel(cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg, embeddingAPIKey)
	if err != nil {
		return nil, err
	}

	logger.Debug("ai provider ready",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"embedding_model", cfg.EmbeddingModel)

	return &Provider{
		model:    model,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// NewProviderWith wraps already constructed services.
func NewProviderWith(model llms.Model, embedder embeddings.Embedder) *Provider {
	return &Provider{
		model:    model,
		embedder: embedder,
		logger:   slog.Default().With("component", "ai-provider"),
	}
}

func (p *Provider) Model() llms.Model {
	return p.model
}

func (p *Provider) Embedder() embeddings.Embedder {
	return p.embedder
}

func newChatModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "", "openai":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai chat client failed: %w", err)
		}
		return client, nil
	case "anthropic":
		client, err := anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic chat client failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func newEmbedder(cfg config.LLMConfig, apiKey string) (embeddings.Embedder, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	// A custom base URL only applies to embeddings when chat goes through the
	// same OpenAI-compatible server.
	if cfg.BaseURL != "" && cfg.Provider != "anthropic" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedding client failed: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder failed: %w", err)
	}
	return embedder, nil
}
