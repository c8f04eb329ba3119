// Package geminiimage provides an image generator backed by the Gemini
// image generation REST endpoint.
package geminiimage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sweetpotato0/colloquy/generator"
)

const geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Config holds image generator configuration.
type Config struct {
	APIKey string
	Model  string
}

// DefaultConfig returns the default image generation configuration.
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey: apiKey,
		Model:  "gemini-2.0-flash-exp-image-generation",
	}
}

// Generator implements generator.ImageGenerator against the Gemini REST API.
type Generator struct {
	config *Config
	client *http.Client
}

// New creates a Gemini image generator.
func New(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.APIKey == "" {
		return nil, generator.NewGenerationError("Gemini API key not configured", nil)
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash-exp-image-generation"
	}
	return &Generator{
		config: config,
		client: &http.Client{},
	}, nil
}

type imageRequest struct {
	Contents         []imageContent        `json:"contents"`
	GenerationConfig imageGenerationConfig `json:"generationConfig"`
}

type imageContent struct {
	Role  string      `json:"role"`
	Parts []imagePart `json:"parts"`
}

type imagePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type imageGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type imageResponse struct {
	Candidates []struct {
		Content struct {
			Parts []imagePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GenerateImage implements generator.ImageGenerator. Width and height are
// advisory; the endpoint chooses its own dimensions, so they are folded
// into the prompt when set.
func (g *Generator) GenerateImage(ctx context.Context, prompt string, cfg generator.ImageConfig) (*generator.Image, error) {
	if cfg.Width > 0 && cfg.Height > 0 {
		prompt = fmt.Sprintf("%s (target size %dx%d)", prompt, cfg.Width, cfg.Height)
	}

	payload := imageRequest{
		Contents: []imageContent{
			{Role: "user", Parts: []imagePart{{Text: prompt}}},
		},
		GenerationConfig: imageGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiAPIURL, g.config.Model, g.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, generator.NewGenerationError("image request failed", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, generator.NewGenerationError(
			fmt.Sprintf("image API returned status %d", httpResp.StatusCode), nil)
	}

	var resp imageResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, generator.NewGenerationError(
			fmt.Sprintf("image API error (code %d): %s", resp.Error.Code, resp.Error.Message), nil)
	}

	return extractImage(&resp)
}

func extractImage(resp *imageResponse) (*generator.Image, error) {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode image data: %w", err)
			}
			return &generator.Image{Data: data, MIMEType: part.InlineData.MIMEType}, nil
		}
	}
	return nil, generator.NewGenerationError("no image in response", nil)
}
