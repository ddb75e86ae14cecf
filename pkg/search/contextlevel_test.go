package search

import (
	"testing"
	"time"

	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullResult() types.SearchResult {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return types.SearchResult{
		Memory: types.Memory{
			ID:         "mem-1",
			Name:       "deploy checklist",
			MemoryType: "procedure",
			Metadata:   map[string]any{"owner": "infra"},
			Observations: []types.Observation{
				{Content: "updated for blue/green", CreatedAt: created},
			},
			CreatedAt:    created,
			ModifiedAt:   created.Add(time.Hour),
			LastAccessed: created.Add(2 * time.Hour),
			Related: &types.GraphContext{
				Descendants: []types.RelatedNode{{ID: "mem-2", Name: "rollback steps", Distance: 1}},
			},
		},
		Score:     0.92,
		MatchType: types.MatchVector,
	}
}

func TestApplyContextLevel(t *testing.T) {
	t.Run("minimal strips everything but identity and score", func(t *testing.T) {
		projected, err := ApplyContextLevel([]types.SearchResult{fullResult()}, types.ContextMinimal)
		require.NoError(t, err)
		require.Len(t, projected, 1)

		row := projected[0]
		assert.Equal(t, map[string]any{
			"id":         "mem-1",
			"name":       "deploy checklist",
			"memoryType": "procedure",
			"score":      0.92,
		}, row)
	})

	t.Run("relations-only keeps identifiers and related", func(t *testing.T) {
		projected, err := ApplyContextLevel([]types.SearchResult{fullResult()}, types.ContextRelationsOnly)
		require.NoError(t, err)
		require.Len(t, projected, 1)

		row := projected[0]
		assert.Equal(t, "mem-1", row["id"])
		assert.Contains(t, row, "related")
		assert.NotContains(t, row, "metadata")
		assert.NotContains(t, row, "score")
	})

	t.Run("relations-only omits empty context", func(t *testing.T) {
		result := fullResult()
		result.Memory.Related = nil
		projected, err := ApplyContextLevel([]types.SearchResult{result}, types.ContextRelationsOnly)
		require.NoError(t, err)
		assert.NotContains(t, projected[0], "related")
	})

	t.Run("full keeps all populated fields", func(t *testing.T) {
		projected, err := ApplyContextLevel([]types.SearchResult{fullResult()}, types.ContextFull)
		require.NoError(t, err)
		require.Len(t, projected, 1)

		row := projected[0]
		assert.Equal(t, "mem-1", row["id"])
		assert.Contains(t, row, "metadata")
		assert.Contains(t, row, "observations")
		assert.Contains(t, row, "createdAt")
		assert.Contains(t, row, "modifiedAt")
		assert.Contains(t, row, "lastAccessed")
		assert.Contains(t, row, "related")
		assert.Equal(t, 0.92, row["score"])
	})

	t.Run("empty level means full", func(t *testing.T) {
		projected, err := ApplyContextLevel([]types.SearchResult{fullResult()}, "")
		require.NoError(t, err)
		assert.Contains(t, projected[0], "observations")
	})

	t.Run("unknown level rejected", func(t *testing.T) {
		_, err := ApplyContextLevel(nil, "verbose")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})
}

func TestValidateContextLevel(t *testing.T) {
	assert.NoError(t, ValidateContextLevel(types.ContextMinimal))
	assert.NoError(t, ValidateContextLevel(types.ContextFull))
	assert.NoError(t, ValidateContextLevel(types.ContextRelationsOnly))
	assert.Error(t, ValidateContextLevel("partial"))
}
