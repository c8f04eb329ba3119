// Package gemini provides a text generator backed by the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sweetpotato0/colloquy/generator"
)

// Config holds Gemini generator configuration.
type Config struct {
	APIKey string
	Model  string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  "gemini-2.0-flash",
	}
}

// Generator implements generator.TextGenerator for Gemini.
type Generator struct {
	config *Config
	client *genai.Client
}

// New creates a Gemini generator using the official SDK.
func New(ctx context.Context, config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.APIKey == "" {
		return nil, generator.NewGenerationError("Gemini API key not configured", nil)
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{config: config, client: client}, nil
}

// Generate implements generator.TextGenerator. A response blocked by safety
// filters yields an empty string with a nil error; callers decide how to
// surface that.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg generator.Config) (string, error) {
	model := g.client.GenerativeModel(g.config.Model)
	model.SetTemperature(float32(cfg.Temperature))
	model.SetTopP(float32(cfg.TopP))
	model.SetTopK(int32(cfg.TopK))
	model.SetMaxOutputTokens(int32(cfg.MaxOutputTokens))
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", generator.NewGenerationError("Gemini request failed", err)
	}
	return extractText(resp), nil
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
