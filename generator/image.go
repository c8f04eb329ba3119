package generator

import "context"

// Image is a generated image payload with its encoding.
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageConfig holds the parameters for image generation requests.
type ImageConfig struct {
	Width  int
	Height int
}

// ImageGenerator produces an image for a prompt. The orchestration layer
// treats it as an opaque capability; encoding and sizing behavior belong to
// the implementation.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, cfg ImageConfig) (*Image, error)
}
