package recall

import (
	"context"

	"github.com/soundprediction/recall/pkg/search"
	"github.com/soundprediction/recall/pkg/types"
)

// This file defines focused interfaces that follow the Interface Segregation Principle.
// The main Recall interface is composed from these smaller interfaces.
// Consumers should depend on the smallest interface that meets their needs.

// Retriever provides read-only retrieval over the memory store.
// Use this interface when you only need to search or expand the graph.
type Retriever interface {
	// Search performs classified free-text retrieval.
	Search(ctx context.Context, query string, opts *search.Options) ([]types.SearchResult, error)

	// Traverse expands the graph explicitly from one memory.
	Traverse(ctx context.Context, opts search.TraversalOptions) ([]types.RelatedNode, error)
}

// MemoryManager provides CRUD operations on memories.
type MemoryManager interface {
	// CreateMemory stores a new memory.
	CreateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error)

	// GetMemory retrieves a memory by id.
	GetMemory(ctx context.Context, id string) (*types.Memory, error)

	// UpdateMemory overwrites an existing memory.
	UpdateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error)

	// DeleteMemory removes a memory and its relations.
	DeleteMemory(ctx context.Context, id string) error
}

// RelationManager provides operations on typed edges between memories.
type RelationManager interface {
	// CreateRelation creates a typed directed edge between two memories.
	CreateRelation(ctx context.Context, relation *types.Relation) error

	// DeleteRelation removes a relation between two memories.
	DeleteRelation(ctx context.Context, fromID, toID, relationType string) error
}

// Ensure the Recall interface composes all focused interfaces.
// This compile-time check keeps the slices and the whole in sync.
var _ interface {
	Retriever
	MemoryManager
	RelationManager
} = (Recall)(nil)
