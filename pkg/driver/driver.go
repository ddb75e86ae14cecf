package driver

import (
	"context"

	"github.com/soundprediction/recall/pkg/types"
)

// GraphDriver is the contract the retrieval core has with the backing
// graph store. Consumers should depend on the smallest slice of it they
// need; strategies only use ExecuteQuery.
type GraphDriver interface {
	// ExecuteQuery runs a read Cypher query with bound parameters and
	// returns the result rows as maps of named fields. Values keep their
	// store-native types; callers normalize them with the helpers in this
	// package.
	ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// GetMemory retrieves a single memory by id.
	GetMemory(ctx context.Context, id string) (*types.Memory, error)

	// UpsertMemory creates or updates a memory node.
	UpsertMemory(ctx context.Context, memory *types.Memory) error

	// DeleteMemory removes a memory and all its relations.
	DeleteMemory(ctx context.Context, id string) error

	// MemoryExists reports whether a memory node exists.
	MemoryExists(ctx context.Context, id string) (bool, error)

	// CreateRelation creates a typed directed edge between two memories.
	// Endpoint existence is checked by the caller, not here.
	CreateRelation(ctx context.Context, relation *types.Relation) error

	// DeleteRelation removes a relation between two memories.
	DeleteRelation(ctx context.Context, fromID, toID, relationType string) error

	// TouchLastAccessed bumps the last-accessed timestamp of a memory.
	TouchLastAccessed(ctx context.Context, id string) error

	// VerifyConnectivity checks that the store is reachable.
	VerifyConnectivity(ctx context.Context) error

	// Close releases all resources held by the driver.
	Close(ctx context.Context) error
}
