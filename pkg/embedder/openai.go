package embedder

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/soundprediction/recall/pkg/errs"
)

const (
	defaultModel      = "text-embedding-3-small"
	defaultDimensions = 1536
	defaultBatchSize  = 100
)

// OpenAIEmbedder implements Client against any OpenAI-compatible
// embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates a new OpenAI embedding client.
func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Dimensions == 0 {
		switch config.Model {
		case "text-embedding-3-large":
			config.Dimensions = 3072
		default:
			config.Dimensions = defaultDimensions
		}
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Embed generates embeddings for the given texts, batching requests to the
// provider's limit. Provider failures surface as a service-unavailable
// condition, distinguishable from caller mistakes.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.config.BatchSize {
		end := min(start+e.config.BatchSize, len(texts))
		batch := make([]string, 0, end-start)
		for _, text := range texts[start:end] {
			batch = append(batch, strings.ReplaceAll(text, "\n", " "))
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.config.Model),
		})
		if err != nil {
			return nil, errs.Wrap(errs.CodeService, "embedding provider request failed", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, errs.Newf(errs.CodeService,
				"embedding provider returned %d vectors for %d inputs", len(resp.Data), len(batch))
		}
		for _, item := range resp.Data {
			embeddings = append(embeddings, item.Embedding)
		}
	}
	return embeddings, nil
}

// EmbedSingle generates an embedding for a single text.
func (e *OpenAIEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errs.New(errs.CodeService, "no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the configured vector length.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

var _ Client = (*OpenAIEmbedder)(nil)
