package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
)

// Neo4jDriver implements GraphDriver against a Neo4j (or Bolt-compatible)
// database. The underlying client owns the connection pool; a session is
// acquired per call and released on every exit path.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   client,
		database: database,
	}, nil
}

// ExecuteQuery runs a read query and flattens the result records into maps
// keyed by the query's return aliases.
func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := d.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, errs.ClassifyStore(err)
	}

	records, ok := result.([]*db.Record)
	if !ok {
		return nil, errs.New(errs.CodeStore, "unexpected result shape from store")
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// memoryReturnClause is the canonical projection of a memory node. Every
// query that returns memories uses the same aliases so MemoryFromRow can
// decode any of them.
const memoryReturnClause = `
	m.id AS id,
	m.name AS name,
	m.memory_type AS memory_type,
	m.metadata AS metadata,
	m.observations AS observations,
	m.embedding AS embedding,
	m.created_at AS created_at,
	m.modified_at AS modified_at,
	m.last_accessed AS last_accessed`

// MemoryReturnClause exposes the shared projection for query builders in
// other packages.
func MemoryReturnClause() string {
	return memoryReturnClause
}

// MemoryFromRow decodes one result row into a Memory, normalizing every
// field at the boundary.
func MemoryFromRow(row map[string]any) types.Memory {
	now := time.Now().UTC()
	return types.Memory{
		ID:           AsString(row["id"]),
		Name:         AsString(row["name"]),
		MemoryType:   AsString(row["memory_type"]),
		Metadata:     ParseMetadata(row["metadata"]),
		Observations: DecodeObservations(row["observations"], now),
		Embedding:    ToFloat32Slice(row["embedding"]),
		CreatedAt:    AsTime(row["created_at"]),
		ModifiedAt:   AsTime(row["modified_at"]),
		LastAccessed: AsTime(row["last_accessed"]),
	}
}

// GetMemory retrieves a memory by id.
func (d *Neo4jDriver) GetMemory(ctx context.Context, id string) (*types.Memory, error) {
	rows, err := d.ExecuteQuery(ctx, `
		MATCH (m:Memory {id: $id})
		RETURN`+memoryReturnClause, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.NotFound("memory", id)
	}
	memory := MemoryFromRow(rows[0])
	return &memory, nil
}

// MemoryExists reports whether a memory node exists.
func (d *Neo4jDriver) MemoryExists(ctx context.Context, id string) (bool, error) {
	rows, err := d.ExecuteQuery(ctx, `
		MATCH (m:Memory {id: $id})
		RETURN m.id AS id
		LIMIT 1`, map[string]any{"id": id})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// UpsertMemory creates or updates a memory node. Metadata and observations
// are serialized to JSON text; the store never interprets them.
func (d *Neo4jDriver) UpsertMemory(ctx context.Context, memory *types.Memory) error {
	if memory == nil || memory.ID == "" {
		return errs.Validation("memory id is required")
	}

	metadata, err := json.Marshal(memory.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}
	observations, err := json.Marshal(memory.Observations)
	if err != nil {
		observations = []byte("[]")
	}

	embedding := make([]float64, len(memory.Embedding))
	for i, f := range memory.Embedding {
		embedding[i] = float64(f)
	}

	session := d.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MERGE (m:Memory {id: $id})
			ON CREATE SET m.created_at = $now
			SET m.name = $name,
			    m.memory_type = $memory_type,
			    m.metadata = $metadata,
			    m.observations = $observations,
			    m.embedding = $embedding,
			    m.modified_at = $now,
			    m.last_accessed = $now`,
			map[string]any{
				"id":           memory.ID,
				"name":         memory.Name,
				"memory_type":  memory.MemoryType,
				"metadata":     string(metadata),
				"observations": string(observations),
				"embedding":    embedding,
				"now":          time.Now().UTC(),
			})
	})
	if err != nil {
		return errs.ClassifyStore(err)
	}
	return nil
}

// DeleteMemory removes a memory and detaches all of its relations.
func (d *Neo4jDriver) DeleteMemory(ctx context.Context, id string) error {
	session := d.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (m:Memory {id: $id})
			DETACH DELETE m`, map[string]any{"id": id})
	})
	if err != nil {
		return errs.ClassifyStore(err)
	}
	return nil
}

// CreateRelation creates a typed directed edge. Relationship types cannot
// be bound as parameters in Cypher, so the type is sanitized and
// interpolated.
func (d *Neo4jDriver) CreateRelation(ctx context.Context, relation *types.Relation) error {
	if relation == nil {
		return errs.Validation("relation is required")
	}

	relType := SanitizeRelationType(relation.RelationType)
	cypher := fmt.Sprintf(`
		MATCH (from:Memory {id: $from_id})
		MATCH (to:Memory {id: $to_id})
		MERGE (from)-[r:%s]->(to)
		SET r.strength = $strength,
		    r.source = $source,
		    r.created_at = $created_at`, relType)

	createdAt := relation.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	session := d.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, map[string]any{
			"from_id":    relation.FromID,
			"to_id":      relation.ToID,
			"strength":   relation.Strength,
			"source":     string(relation.Source),
			"created_at": createdAt,
		})
	})
	if err != nil {
		return errs.ClassifyStore(err)
	}
	return nil
}

// DeleteRelation removes a relation between two memories.
func (d *Neo4jDriver) DeleteRelation(ctx context.Context, fromID, toID, relationType string) error {
	relType := SanitizeRelationType(relationType)
	cypher := fmt.Sprintf(`
		MATCH (from:Memory {id: $from_id})-[r:%s]->(to:Memory {id: $to_id})
		DELETE r`, relType)

	session := d.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, map[string]any{
			"from_id": fromID,
			"to_id":   toID,
		})
	})
	if err != nil {
		return errs.ClassifyStore(err)
	}
	return nil
}

// TouchLastAccessed bumps the last-accessed timestamp of a memory.
func (d *Neo4jDriver) TouchLastAccessed(ctx context.Context, id string) error {
	session := d.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `
			MATCH (m:Memory {id: $id})
			SET m.last_accessed = $now`,
			map[string]any{"id": id, "now": time.Now().UTC()})
	})
	if err != nil {
		return errs.ClassifyStore(err)
	}
	return nil
}

// VerifyConnectivity checks that the store is reachable.
func (d *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	if err := d.client.VerifyConnectivity(ctx); err != nil {
		return errs.ClassifyStore(err)
	}
	return nil
}

// Close releases the connection pool.
func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.client.Close(ctx)
}

var _ GraphDriver = (*Neo4jDriver)(nil)
