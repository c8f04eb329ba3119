// Package openai provides a text generator backed by the OpenAI API.
package openai

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/sweetpotato0/colloquy/generator"
)

// Config holds OpenAI generator configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// WithBaseURL set BaseURL.
func (cfg *Config) WithBaseURL(url string) *Config {
	cfg.BaseURL = url
	return cfg
}

// WithModel set model.
func (cfg *Config) WithModel(model string) *Config {
	cfg.Model = model
	return cfg
}

// DefaultConfig returns the default OpenAI configuration.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  "gpt-4o-mini",
	}
}

// Generator implements generator.TextGenerator for OpenAI.
type Generator struct {
	config *Config
	client openai.Client
}

// New creates an OpenAI generator using the official SDK.
func New(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.APIKey == "" {
		return nil, generator.NewGenerationError("OpenAI API key not configured", nil)
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}

	return &Generator{
		config: config,
		client: openai.NewClient(options...),
	}, nil
}

// Generate implements generator.TextGenerator.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg generator.Config) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(g.config.Model),
	}
	if cfg.Temperature > 0 {
		params.Temperature = param.NewOpt(cfg.Temperature)
	}
	if cfg.TopP > 0 && cfg.TopP < 1 {
		params.TopP = param.NewOpt(cfg.TopP)
	}
	if cfg.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(cfg.MaxOutputTokens))
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", generator.NewGenerationError("OpenAI request failed", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
