package embedder

import (
	"context"
	"strings"

	"github.com/soundprediction/recall/pkg/errs"
)

// Client generates embeddings for text.
type Client interface {
	// Embed generates embeddings for the given texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the length of the vectors this client produces.
	Dimensions() int

	// Close releases any resources held by the client.
	Close() error
}

// Config holds common embedding client settings.
type Config struct {
	Model      string
	BaseURL    string
	Dimensions int
	BatchSize  int
}

// validateTexts rejects empty or whitespace-only input before any provider
// call is made.
func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return errs.Validation("no text provided for embedding")
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return errs.Validation("cannot embed empty text")
		}
	}
	return nil
}
