package recall

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soundprediction/recall/pkg/driver"
	"github.com/soundprediction/recall/pkg/embedder"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/search"
	"github.com/soundprediction/recall/pkg/types"
)

// Recall is the main interface for interacting with a graph-structured
// memory store. It provides retrieval over stored memories plus the CRUD
// operations that maintain them.
type Recall interface {
	// Search runs a free-text retrieval: the query is classified and
	// dispatched to the matching strategy, and results are optionally
	// enriched with their graph neighborhood.
	Search(ctx context.Context, query string, opts *search.Options) ([]types.SearchResult, error)

	// Traverse expands the graph explicitly from one memory, independent
	// of free-text classification.
	Traverse(ctx context.Context, opts search.TraversalOptions) ([]types.RelatedNode, error)

	// CreateMemory stores a new memory, assigning an id if none is given.
	CreateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error)

	// GetMemory retrieves a memory by id and bumps its last-accessed time.
	GetMemory(ctx context.Context, id string) (*types.Memory, error)

	// UpdateMemory overwrites an existing memory.
	UpdateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error)

	// DeleteMemory removes a memory and detaches its relations.
	DeleteMemory(ctx context.Context, id string) error

	// CreateRelation creates a typed directed edge. Both endpoints must
	// already exist.
	CreateRelation(ctx context.Context, relation *types.Relation) error

	// DeleteRelation removes a relation between two memories.
	DeleteRelation(ctx context.Context, fromID, toID, relationType string) error

	// Close closes all connections and cleans up resources.
	Close(ctx context.Context) error
}

// Config holds configuration for the Recall client.
type Config struct {
	// MaxTraversalDepth is the operator ceiling on explicit traversal
	// depth. Zero selects the default.
	MaxTraversalDepth int

	// TimeZone for timestamp normalization. Defaults to UTC.
	TimeZone *time.Location
}

// Client is the main implementation of the Recall interface.
type Client struct {
	driver    driver.GraphDriver
	embedder  embedder.Client
	searcher  *search.Searcher
	traversal *search.TraversalProcessor
	config    *Config
	logger    *slog.Logger
}

// NewClient creates a new Recall client with the provided collaborators.
// The embedder may be nil when semantic search is not needed.
func NewClient(graphDriver driver.GraphDriver, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if graphDriver == nil {
		return nil, errs.Validation("graph driver is required")
	}
	if config == nil {
		config = &Config{}
	}
	if config.TimeZone == nil {
		config.TimeZone = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		driver:    graphDriver,
		embedder:  embedderClient,
		searcher:  search.NewSearcher(graphDriver, embedderClient, logger),
		traversal: search.NewTraversalProcessor(graphDriver, config.MaxTraversalDepth),
		config:    config,
		logger:    logger,
	}, nil
}

// GetDriver returns the underlying graph driver
func (c *Client) GetDriver() driver.GraphDriver {
	return c.driver
}

// GetEmbedder returns the embedder client
func (c *Client) GetEmbedder() embedder.Client {
	return c.embedder
}

// Search implements Recall.
func (c *Client) Search(ctx context.Context, query string, opts *search.Options) ([]types.SearchResult, error) {
	if opts == nil {
		opts = &search.Options{}
	}
	return c.searcher.Search(ctx, query, *opts)
}

// Traverse implements Recall.
func (c *Client) Traverse(ctx context.Context, opts search.TraversalOptions) ([]types.RelatedNode, error) {
	return c.traversal.Traverse(ctx, opts)
}

// CreateMemory stores a new memory. Missing ids are generated; missing
// timestamps are set to now. When an embedder is configured, an embedding
// is computed from the memory's name and observations so the memory is
// reachable by semantic search.
func (c *Client) CreateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error) {
	if memory == nil {
		return nil, errs.Validation("memory is required")
	}
	if strings.TrimSpace(memory.Name) == "" {
		return nil, errs.Validation("memory name is required")
	}
	if memory.ID == "" {
		memory.ID = uuid.New().String()
	}

	now := time.Now().In(c.config.TimeZone)
	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = now
	}
	memory.ModifiedAt = now
	memory.LastAccessed = now

	c.ensureEmbedding(ctx, memory)

	if err := c.driver.UpsertMemory(ctx, memory); err != nil {
		return nil, err
	}
	c.logger.Debug("created memory", "id", memory.ID, "type", memory.MemoryType)
	return memory, nil
}

// GetMemory implements Recall.
func (c *Client) GetMemory(ctx context.Context, id string) (*types.Memory, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.Validation("memory id is required")
	}
	memory, err := c.driver.GetMemory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.driver.TouchLastAccessed(ctx, id); err != nil {
		c.logger.Warn("failed to bump last accessed", "id", id, "error", err)
	}
	return memory, nil
}

// UpdateMemory overwrites an existing memory. The memory must exist.
func (c *Client) UpdateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error) {
	if memory == nil || strings.TrimSpace(memory.ID) == "" {
		return nil, errs.Validation("memory id is required")
	}

	exists, err := c.driver.MemoryExists(ctx, memory.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("memory", memory.ID)
	}

	memory.ModifiedAt = time.Now().In(c.config.TimeZone)
	c.ensureEmbedding(ctx, memory)

	if err := c.driver.UpsertMemory(ctx, memory); err != nil {
		return nil, err
	}
	return memory, nil
}

// DeleteMemory implements Recall.
func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.Validation("memory id is required")
	}
	return c.driver.DeleteMemory(ctx, id)
}

// CreateRelation creates a typed directed edge after checking that both
// endpoints exist. The store itself does not enforce this.
func (c *Client) CreateRelation(ctx context.Context, relation *types.Relation) error {
	if relation == nil {
		return errs.Validation("relation is required")
	}
	if relation.FromID == "" || relation.ToID == "" {
		return errs.Validation("relation endpoints are required")
	}
	if relation.Strength < 0 || relation.Strength > 1 {
		return errs.Validation("relation strength must be within [0,1], got %g", relation.Strength)
	}

	for _, id := range []string{relation.FromID, relation.ToID} {
		exists, err := c.driver.MemoryExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return errs.NotFound("memory", id)
		}
	}

	if relation.CreatedAt.IsZero() {
		relation.CreatedAt = time.Now().In(c.config.TimeZone)
	}
	return c.driver.CreateRelation(ctx, relation)
}

// DeleteRelation implements Recall.
func (c *Client) DeleteRelation(ctx context.Context, fromID, toID, relationType string) error {
	if fromID == "" || toID == "" {
		return errs.Validation("relation endpoints are required")
	}
	return c.driver.DeleteRelation(ctx, fromID, toID, relationType)
}

// Close implements Recall.
func (c *Client) Close(ctx context.Context) error {
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			c.logger.Warn("failed to close embedder", "error", err)
		}
	}
	return c.driver.Close(ctx)
}

// ensureEmbedding computes a vector for the memory from its name and
// observation contents. Failures degrade to a memory without an embedding
// rather than failing the write; such memories are simply not reachable by
// semantic search.
func (c *Client) ensureEmbedding(ctx context.Context, memory *types.Memory) {
	if c.embedder == nil || len(memory.Embedding) > 0 {
		return
	}

	parts := []string{memory.Name}
	for _, obs := range memory.Observations {
		if strings.TrimSpace(obs.Content) != "" {
			parts = append(parts, obs.Content)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return
	}

	vector, err := c.embedder.EmbedSingle(ctx, text)
	if err != nil {
		c.logger.Warn("failed to embed memory", "id", memory.ID, "error", err)
		return
	}
	memory.Embedding = vector
}

var _ Recall = (*Client)(nil)
