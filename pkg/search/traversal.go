package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/recall/pkg/driver"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
)

const (
	// DefaultTraversalDepth is used when the caller does not bound the
	// traversal explicitly.
	DefaultTraversalDepth = 2

	// DefaultMaxTraversalDepth is the operator-configurable ceiling on
	// caller-requested depth.
	DefaultMaxTraversalDepth = 5
)

// TraversalOptions is an explicit "expand from this node" request,
// independent of free-text classification.
type TraversalOptions struct {
	// TraverseFrom is the id of the anchor memory. Required.
	TraverseFrom string `json:"traverseFrom"`

	// MaxDepth bounds the expansion in hops. Zero means the default depth.
	MaxDepth int `json:"maxDepth,omitempty"`

	// Direction selects which edges to follow. Empty means both.
	Direction types.TraversalDirection `json:"traverseDirection,omitempty"`

	// Relations restricts the traversal to the named relation types. A nil
	// slice means no filter; an empty non-nil slice is a validation error
	// so "no filter" and "filter matching nothing" stay distinguishable.
	Relations []string `json:"traverseRelations,omitempty"`
}

// TraversalRequest is the store-level request a TraversalProcessor builds:
// a declarative pattern plus its bound parameters.
type TraversalRequest struct {
	Cypher string
	Params map[string]any
}

// TraversalProcessor validates traversal options, builds bounded traversal
// requests, and normalizes the rows that come back.
type TraversalProcessor struct {
	store    driver.GraphDriver
	maxDepth int
}

// NewTraversalProcessor creates a processor with the given depth ceiling.
// A non-positive ceiling falls back to the default.
func NewTraversalProcessor(store driver.GraphDriver, maxDepth int) *TraversalProcessor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxTraversalDepth
	}
	return &TraversalProcessor{store: store, maxDepth: maxDepth}
}

// Process validates the options and builds the traversal request. All
// validation happens before any request is constructed.
func (p *TraversalProcessor) Process(options TraversalOptions) (*TraversalRequest, error) {
	if strings.TrimSpace(options.TraverseFrom) == "" {
		return nil, errs.Validation("traverseFrom required")
	}

	depth := options.MaxDepth
	if depth == 0 {
		depth = DefaultTraversalDepth
	}
	if depth < 1 || depth > p.maxDepth {
		return nil, errs.Validation("maxDepth must be between 1 and %d, got %d", p.maxDepth, options.MaxDepth)
	}

	direction := options.Direction
	if direction == "" {
		direction = types.DirectionBoth
	}
	switch direction {
	case types.DirectionOutbound, types.DirectionInbound, types.DirectionBoth:
	default:
		return nil, errs.Validation("invalid traverseDirection %q: must be one of outbound, inbound, both", options.Direction)
	}

	if options.Relations != nil && len(options.Relations) == 0 {
		return nil, errs.Validation("traverseRelations cannot be empty if provided")
	}

	// Relationship types cannot be bound as parameters, so the filter is
	// sanitized and interpolated into the pattern.
	relFilter := ""
	if len(options.Relations) > 0 {
		sanitized := make([]string, len(options.Relations))
		for i, rel := range options.Relations {
			sanitized[i] = driver.SanitizeRelationType(rel)
		}
		relFilter = ":" + strings.Join(sanitized, "|")
	}

	var pattern string
	switch direction {
	case types.DirectionOutbound:
		pattern = fmt.Sprintf("(start:Memory {id: $traverse_from})-[%s*1..%d]->(n:Memory)", relFilter, depth)
	case types.DirectionInbound:
		pattern = fmt.Sprintf("(start:Memory {id: $traverse_from})<-[%s*1..%d]-(n:Memory)", relFilter, depth)
	default:
		pattern = fmt.Sprintf("(start:Memory {id: $traverse_from})-[%s*1..%d]-(n:Memory)", relFilter, depth)
	}

	cypher := fmt.Sprintf(`
		MATCH p = %s
		WHERE n.id <> start.id
		RETURN DISTINCT
			n.id AS id,
			n.name AS name,
			n.memory_type AS memory_type,
			type(relationships(p)[0]) AS relation,
			length(p) AS distance,
			relationships(p)[0].strength AS strength,
			relationships(p)[0].source AS source,
			relationships(p)[0].created_at AS created_at
		ORDER BY distance, id`, pattern)

	return &TraversalRequest{
		Cypher: cypher,
		Params: map[string]any{"traverse_from": options.TraverseFrom},
	}, nil
}

// ProcessResults normalizes raw traversal rows into related nodes. A node
// reachable by several paths is reported once at its minimum distance.
func (p *TraversalProcessor) ProcessResults(rows []map[string]any) []types.RelatedNode {
	best := make(map[string]types.RelatedNode, len(rows))
	for _, row := range rows {
		node := relatedNodeFromRow(row)
		if node.ID == "" {
			continue
		}
		if existing, ok := best[node.ID]; !ok || node.Distance < existing.Distance {
			best[node.ID] = node
		}
	}

	nodes := make([]types.RelatedNode, 0, len(best))
	for _, node := range best {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Distance != nodes[j].Distance {
			return nodes[i].Distance < nodes[j].Distance
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// Traverse validates, builds, executes, and normalizes in one call. Zero
// reachable nodes yields an empty slice, not an error.
func (p *TraversalProcessor) Traverse(ctx context.Context, options TraversalOptions) ([]types.RelatedNode, error) {
	request, err := p.Process(options)
	if err != nil {
		return nil, err
	}

	rows, err := p.store.ExecuteQuery(ctx, request.Cypher, request.Params)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStore, fmt.Sprintf("traversal from %q failed", options.TraverseFrom), err)
	}
	return p.ProcessResults(rows), nil
}

func relatedNodeFromRow(row map[string]any) types.RelatedNode {
	node := types.RelatedNode{
		ID:         driver.AsString(row["id"]),
		Name:       driver.AsString(row["name"]),
		MemoryType: driver.AsString(row["memory_type"]),
		Relation:   driver.AsString(row["relation"]),
		Distance:   driver.AsInt(row["distance"]),
		Strength:   driver.AsFloat64(row["strength"]),
		Source:     driver.AsString(row["source"]),
	}
	if created := driver.AsTime(row["created_at"]); !created.IsZero() {
		node.CreatedAt = &created
	}
	return node
}
