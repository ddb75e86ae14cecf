// Package embedder provides text embedding clients for vector search.
//
// The Client interface maps text to fixed-length vectors. The OpenAI
// implementation talks to any OpenAI-compatible embeddings API. Decorators
// compose around it:
//
//	lazy := embedder.NewLazyClient(factory, idleTimeout, logger)
//	cached := embedder.NewCachedClient(lazy)
//	breaker := embedder.NewCircuitBreakerClient(cached, cfg, alerter, "embeddings")
//
// NewLazyClient defers construction until the first embedding request,
// shares one in-flight initialization between concurrent callers, and
// releases the underlying client after a configurable idle period.
package embedder
