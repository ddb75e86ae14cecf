package search

import (
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
)

// ValidateContextLevel rejects any level outside the known set.
func ValidateContextLevel(level types.ContextLevel) error {
	switch level {
	case types.ContextMinimal, types.ContextFull, types.ContextRelationsOnly:
		return nil
	default:
		return errs.Validation("invalid context level %q: must be one of minimal, full, relations-only", level)
	}
}

// ApplyContextLevel projects search results down to the requested
// verbosity. An empty level means full.
//
//   - minimal strips observations, metadata, timestamps, and graph context,
//     keeping only id, name, memory type, and score.
//   - relations-only keeps identifiers plus the related graph context.
//   - full is the identity projection.
func ApplyContextLevel(results []types.SearchResult, level types.ContextLevel) ([]map[string]any, error) {
	if level == "" {
		level = types.ContextFull
	}
	if err := ValidateContextLevel(level); err != nil {
		return nil, err
	}

	projected := make([]map[string]any, 0, len(results))
	for _, result := range results {
		switch level {
		case types.ContextMinimal:
			projected = append(projected, map[string]any{
				"id":         result.Memory.ID,
				"name":       result.Memory.Name,
				"memoryType": result.Memory.MemoryType,
				"score":      result.Score,
			})
		case types.ContextRelationsOnly:
			row := map[string]any{
				"id":   result.Memory.ID,
				"name": result.Memory.Name,
			}
			if !result.Memory.Related.Empty() {
				row["related"] = result.Memory.Related
			}
			projected = append(projected, row)
		default:
			row := map[string]any{
				"id":         result.Memory.ID,
				"name":       result.Memory.Name,
				"memoryType": result.Memory.MemoryType,
				"score":      result.Score,
				"matchType":  result.MatchType,
			}
			if len(result.Memory.Metadata) > 0 {
				row["metadata"] = result.Memory.Metadata
			}
			if len(result.Memory.Observations) > 0 {
				row["observations"] = result.Memory.Observations
			}
			if !result.Memory.CreatedAt.IsZero() {
				row["createdAt"] = result.Memory.CreatedAt
			}
			if !result.Memory.ModifiedAt.IsZero() {
				row["modifiedAt"] = result.Memory.ModifiedAt
			}
			if !result.Memory.LastAccessed.IsZero() {
				row["lastAccessed"] = result.Memory.LastAccessed
			}
			if !result.Memory.Related.Empty() {
				row["related"] = result.Memory.Related
			}
			projected = append(projected, row)
		}
	}
	return projected, nil
}
