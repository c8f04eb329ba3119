// Package claude provides a text generator backed by the Anthropic API.
package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/sweetpotato0/colloquy/generator"
)

// Config holds Claude generator configuration.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig returns the default Claude configuration.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  "claude-sonnet-4-5-20250929",
	}
}

// Generator implements generator.TextGenerator for Claude.
type Generator struct {
	config *Config
	client anthropic.Client
}

// New creates a Claude generator using the official SDK.
func New(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.APIKey == "" {
		return nil, generator.NewGenerationError("Claude API key not configured", nil)
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-5-20250929"
	}

	options := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}

	return &Generator{
		config: config,
		client: anthropic.NewClient(options...),
	}, nil
}

// Generate implements generator.TextGenerator.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg generator.Config) (string, error) {
	params := anthropic.MessageNewParams{
		Model: anthropic.Model(g.config.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens: int64(cfg.MaxOutputTokens),
	}
	if cfg.Temperature > 0 {
		params.Temperature = param.NewOpt(cfg.Temperature)
	}
	if cfg.TopP > 0 && cfg.TopP < 1 {
		params.TopP = param.NewOpt(cfg.TopP)
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", generator.NewGenerationError("Claude request failed", err)
	}

	var text string
	for _, content := range msg.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	return text, nil
}
