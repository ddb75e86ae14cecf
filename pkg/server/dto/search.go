package dto

import (
	v "github.com/cohesivestack/valgo"
)

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query               string   `json:"query"`
	MemoryTypes         []string `json:"memoryTypes,omitempty"`
	Limit               int      `json:"limit,omitempty"`
	Threshold           float64  `json:"threshold,omitempty"`
	IncludeGraphContext *bool    `json:"includeGraphContext,omitempty"`
	ContextLevel        string   `json:"contextLevel,omitempty"`

	CreatedAfter  string `json:"createdAfter,omitempty"`
	CreatedBefore string `json:"createdBefore,omitempty"`
	ModifiedSince string `json:"modifiedSince,omitempty"`
	AccessedSince string `json:"accessedSince,omitempty"`
}

// Validate checks the request shape before anything touches the store or
// the embedding provider. Use "*" or "all" for an unconstrained search; a
// blank query is rejected at this boundary.
func (r *SearchRequest) Validate() *v.Validation {
	val := v.Is(v.String(r.Query, "query").Not().Blank())
	if r.Limit != 0 {
		val.Is(v.Number(r.Limit, "limit").GreaterThan(0))
	}
	if r.Threshold != 0 {
		val.Is(v.Number(r.Threshold, "threshold").GreaterOrEqualTo(0.0).LessOrEqualTo(1.0))
	}
	if r.ContextLevel != "" {
		val.Is(v.String(r.ContextLevel, "contextLevel").InSlice([]string{"minimal", "full", "relations-only"}))
	}
	return val
}

// SearchResponse is the body returned by POST /api/v1/search.
type SearchResponse struct {
	Results []map[string]any `json:"results"`
	Total   int              `json:"total"`
}

// TraverseRequest is the body of POST /api/v1/traverse.
type TraverseRequest struct {
	TraverseFrom      string   `json:"traverseFrom"`
	MaxDepth          int      `json:"maxDepth,omitempty"`
	TraverseDirection string   `json:"traverseDirection,omitempty"`
	TraverseRelations []string `json:"traverseRelations,omitempty"`
}

// Validate checks the request shape. Depth-ceiling and direction checks
// live in the traversal processor; this only rejects the obviously
// malformed.
func (r *TraverseRequest) Validate() *v.Validation {
	val := v.Is(v.String(r.TraverseFrom, "traverseFrom").Not().Blank())
	if r.MaxDepth != 0 {
		val.Is(v.Number(r.MaxDepth, "maxDepth").GreaterThan(0))
	}
	return val
}

// ValidationDetails flattens a failed validation into a field-to-messages
// map suitable for an ErrorResponse.
func ValidationDetails(val *v.Validation) map[string][]string {
	details := make(map[string][]string, len(val.Errors()))
	for field, err := range val.Errors() {
		details[field] = err.Messages()
	}
	return details
}
