package generator

import (
	"context"
	"errors"
	"fmt"
)

// Config holds the sampling parameters passed to a text generation backend.
type Config struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

// DefaultConfig returns the sampling defaults used by dialog runs.
func DefaultConfig() Config {
	return Config{
		Temperature:     0.7,
		TopP:            1.0,
		TopK:            32,
		MaxOutputTokens: 1024,
	}
}

// TextGenerator produces text for a prompt. Implementations wrap an
// upstream model API; they are expected to be safe for sequential reuse
// across turns. An empty result with a nil error is a valid outcome and is
// handled by callers, while a returned error is fatal to the enclosing run.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, cfg Config) (string, error)
}

// GenerateFunc adapts a plain function to the TextGenerator interface.
type GenerateFunc func(ctx context.Context, prompt string, cfg Config) (string, error)

// Generate calls f.
func (f GenerateFunc) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	return f(ctx, prompt, cfg)
}

// GenerationError reports that the upstream service rejected a request, was
// unreachable, or returned no content it was required to.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError creates a GenerationError with a human-readable message.
func NewGenerationError(message string, err error) *GenerationError {
	return &GenerationError{Message: message, Err: err}
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
