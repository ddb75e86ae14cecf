package embedder

import (
	"context"

	"github.com/dgraph-io/ristretto"
)

// CachedClient memoizes embeddings by exact input text. Queries repeat
// often in agent workloads, and a cache hit avoids both provider latency
// and a model initialization when fronting a LazyClient.
type CachedClient struct {
	next  Client
	cache *ristretto.Cache
}

// NewCachedClient wraps a client with an in-process embedding cache.
func NewCachedClient(next Client) (*CachedClient, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     64 << 20, // ~64 MiB of vectors
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedClient{next: next, cache: cache}, nil
}

// Embed implements Client. Only texts missing from the cache are sent to
// the underlying client, in their original order.
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if cached, ok := c.cache.Get(text); ok {
			if vector, ok := cached.([]float32); ok {
				results[i] = vector
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		embeddings, err := c.next.Embed(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, vector := range embeddings {
			results[missingIdx[j]] = vector
			c.cache.Set(missing[j], vector, int64(4*len(vector)))
		}
	}
	return results, nil
}

// EmbedSingle implements Client.
func (c *CachedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions implements Client.
func (c *CachedClient) Dimensions() int {
	return c.next.Dimensions()
}

// Close releases the cache and the underlying client.
func (c *CachedClient) Close() error {
	c.cache.Close()
	return c.next.Close()
}

var _ Client = (*CachedClient)(nil)
