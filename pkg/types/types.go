package types

import (
	"strings"
	"time"
)

// Observation is a single dated note attached to a memory. Content is
// required; observations with empty content are dropped when loading from
// the store.
type Observation struct {
	ID        string    `json:"id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Memory is a node in the graph store representing one stored unit of
// agent knowledge.
type Memory struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	MemoryType   string         `json:"memoryType"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Observations []Observation  `json:"observations,omitempty"`
	Embedding    []float32      `json:"-"`
	CreatedAt    time.Time      `json:"createdAt,omitempty"`
	ModifiedAt   time.Time      `json:"modifiedAt,omitempty"`
	LastAccessed time.Time      `json:"lastAccessed,omitempty"`

	// Related is the bounded graph neighborhood of this memory. It is nil
	// unless graph-context enrichment was requested and at least one side
	// is non-empty, so callers can distinguish "not requested / nothing
	// there" from an attached context.
	Related *GraphContext `json:"related,omitempty"`
}

// RelationSource identifies who asserted a relation.
type RelationSource string

const (
	SourceAgent  RelationSource = "agent"
	SourceUser   RelationSource = "user"
	SourceSystem RelationSource = "system"
)

// Relation is a typed directed edge between two memories.
type Relation struct {
	FromID       string         `json:"fromId"`
	ToID         string         `json:"toId"`
	RelationType string         `json:"relationType"`
	Strength     float64        `json:"strength,omitempty"`
	Source       RelationSource `json:"source,omitempty"`
	CreatedAt    time.Time      `json:"createdAt,omitempty"`
}

// RelatedNode is one neighbor discovered by graph-context enrichment or an
// explicit traversal. Distance is the hop count from the anchor memory.
type RelatedNode struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	MemoryType string     `json:"type"`
	Relation   string     `json:"relation"`
	Distance   int        `json:"distance"`
	Strength   float64    `json:"strength,omitempty"`
	Source     string     `json:"source,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// GraphContext is the bounded-depth neighborhood of a memory: nodes
// reachable by inbound edges (ancestors) and outbound edges (descendants).
type GraphContext struct {
	Ancestors   []RelatedNode `json:"ancestors,omitempty"`
	Descendants []RelatedNode `json:"descendants,omitempty"`
}

// Empty reports whether both sides of the context are empty. An empty
// context is never attached to a result.
func (g *GraphContext) Empty() bool {
	return g == nil || (len(g.Ancestors) == 0 && len(g.Descendants) == 0)
}

// QueryType is the retrieval strategy chosen for a free-text query.
type QueryType string

const (
	Wildcard            QueryType = "wildcard"
	TechnicalIdentifier QueryType = "technical_identifier"
	ExactSearch         QueryType = "exact_search"
	SemanticSearch      QueryType = "semantic_search"
)

// QueryIntent is the classifier's decision for a single query. It is
// request-scoped and never persisted.
type QueryIntent struct {
	Type          QueryType `json:"type"`
	Confidence    float64   `json:"confidence"`
	Preprocessing struct {
		Normalized         string `json:"normalized"`
		IsSpecialPattern   bool   `json:"isSpecialPattern"`
		RequiresExactMatch bool   `json:"requiresExactMatch"`
	} `json:"preprocessing"`
}

// MatchType describes how a search result was matched. It is derived from
// the strategy that produced the result, never stored.
type MatchType string

const (
	MatchVector   MatchType = "vector"
	MatchMetadata MatchType = "metadata"
	MatchWildcard MatchType = "wildcard"
)

// SearchResult is a scored memory returned from a retrieval strategy.
type SearchResult struct {
	Memory    Memory    `json:"memory"`
	Score     float64   `json:"score"`
	MatchType MatchType `json:"matchType"`
}

// TraversalDirection selects which edges an explicit traversal follows.
type TraversalDirection string

const (
	DirectionOutbound TraversalDirection = "outbound"
	DirectionInbound  TraversalDirection = "inbound"
	DirectionBoth     TraversalDirection = "both"
)

// ContextLevel is the response-shaping knob controlling how much of a
// memory is returned to the caller.
type ContextLevel string

const (
	ContextMinimal       ContextLevel = "minimal"
	ContextFull          ContextLevel = "full"
	ContextRelationsOnly ContextLevel = "relations-only"
)

// NormalizeQuery lowercases and trims a query the way the classifier and
// strategies expect to see it.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
