package embedder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/soundprediction/recall/pkg/errs"
)

// LazyClient defers construction of an expensive embedding client until the
// first request. Concurrent callers arriving during initialization await
// the same in-flight attempt; a failed attempt resets state so the next
// call retries. After a configurable idle period with no successful
// embeddings the underlying client is released to reclaim memory, and the
// next request initializes it again.
type LazyClient struct {
	factory     func() (Client, error)
	idleTimeout time.Duration
	logger      *slog.Logger

	mu        sync.Mutex
	client    Client
	init      *initState
	idleTimer *time.Timer
	dims      int
	closed    bool
}

type initState struct {
	done chan struct{}
	err  error
}

// NewLazyClient wraps a client factory with lazy initialization and idle
// release. An idleTimeout of zero disables idle release.
func NewLazyClient(factory func() (Client, error), idleTimeout time.Duration, logger *slog.Logger) *LazyClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &LazyClient{
		factory:     factory,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// get returns the underlying client, initializing it if needed.
func (l *LazyClient) get(ctx context.Context) (Client, error) {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return nil, errs.New(errs.CodeService, "embedding client is closed")
		}
		if l.client != nil {
			client := l.client
			l.mu.Unlock()
			return client, nil
		}
		if l.init != nil {
			// Another caller is initializing; wait for its outcome.
			st := l.init
			l.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-st.done:
			}
			if st.err != nil {
				return nil, st.err
			}
			continue
		}

		st := &initState{done: make(chan struct{})}
		l.init = st
		l.mu.Unlock()

		l.logger.Debug("initializing embedding client")
		client, err := l.factory()

		l.mu.Lock()
		l.init = nil
		if err != nil {
			l.mu.Unlock()
			st.err = errs.Wrap(errs.CodeService, "embedding client initialization failed", err)
			close(st.done)
			return nil, st.err
		}
		if l.closed {
			l.mu.Unlock()
			close(st.done)
			client.Close()
			return nil, errs.New(errs.CodeService, "embedding client is closed")
		}
		l.client = client
		l.dims = client.Dimensions()
		l.mu.Unlock()
		close(st.done)
		return client, nil
	}
}

// touch resets the idle release timer. Called after every successful
// embedding computation.
func (l *LazyClient) touch() {
	if l.idleTimeout <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.client == nil {
		return
	}
	if l.idleTimer != nil {
		l.idleTimer.Stop()
	}
	l.idleTimer = time.AfterFunc(l.idleTimeout, l.releaseIdle)
}

// releaseIdle drops the underlying client after a quiet period.
func (l *LazyClient) releaseIdle() {
	l.mu.Lock()
	client := l.client
	l.client = nil
	l.idleTimer = nil
	l.mu.Unlock()

	if client != nil {
		l.logger.Info("releasing idle embedding client")
		client.Close()
	}
}

// Embed implements Client.
func (l *LazyClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	client, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := client.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	l.touch()
	return embeddings, nil
}

// EmbedSingle implements Client.
func (l *LazyClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := l.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errs.New(errs.CodeService, "no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions returns the vector length of the underlying client, or 0 if
// it has never been initialized.
func (l *LazyClient) Dimensions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dims
}

// Close cancels the idle timer and releases the underlying client.
func (l *LazyClient) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	if l.idleTimer != nil {
		l.idleTimer.Stop()
		l.idleTimer = nil
	}
	client := l.client
	l.client = nil
	l.mu.Unlock()

	if client != nil {
		return client.Close()
	}
	return nil
}

var _ Client = (*LazyClient)(nil)
