package search

import (
	"context"
	"testing"

	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraversalProcessorValidation(t *testing.T) {
	p := NewTraversalProcessor(&fakeStore{}, 5)

	tests := []struct {
		name    string
		options TraversalOptions
		wantErr string
	}{
		{"missing traverseFrom", TraversalOptions{}, "traverseFrom required"},
		{"whitespace traverseFrom", TraversalOptions{TraverseFrom: "   "}, "traverseFrom required"},
		{"depth below range", TraversalOptions{TraverseFrom: "a", MaxDepth: -1}, "between 1 and 5"},
		{"depth above ceiling", TraversalOptions{TraverseFrom: "a", MaxDepth: 6}, "between 1 and 5"},
		{"bad direction", TraversalOptions{TraverseFrom: "a", Direction: "sideways"}, "invalid traverseDirection"},
		{"empty relations", TraversalOptions{TraverseFrom: "a", Relations: []string{}}, "cannot be empty if provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(tt.options)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTraversalProcessorRequest(t *testing.T) {
	p := NewTraversalProcessor(&fakeStore{}, 0)

	t.Run("defaults", func(t *testing.T) {
		request, err := p.Process(TraversalOptions{TraverseFrom: "mem-1"})
		require.NoError(t, err)
		assert.Contains(t, request.Cypher, "-[*1..2]-")
		assert.NotContains(t, request.Cypher, "->")
		assert.Equal(t, "mem-1", request.Params["traverse_from"])
	})

	t.Run("outbound", func(t *testing.T) {
		request, err := p.Process(TraversalOptions{
			TraverseFrom: "mem-1",
			MaxDepth:     3,
			Direction:    types.DirectionOutbound,
		})
		require.NoError(t, err)
		assert.Contains(t, request.Cypher, "-[*1..3]->")
	})

	t.Run("inbound", func(t *testing.T) {
		request, err := p.Process(TraversalOptions{
			TraverseFrom: "mem-1",
			Direction:    types.DirectionInbound,
		})
		require.NoError(t, err)
		assert.Contains(t, request.Cypher, "<-[*1..2]-")
	})

	t.Run("relation filter is sanitized and interpolated", func(t *testing.T) {
		request, err := p.Process(TraversalOptions{
			TraverseFrom: "mem-1",
			Relations:    []string{"depends on", "blocks"},
		})
		require.NoError(t, err)
		assert.Contains(t, request.Cypher, "[:DEPENDS_ON|BLOCKS*1..2]")
	})
}

func TestTraversalProcessResults(t *testing.T) {
	p := NewTraversalProcessor(&fakeStore{}, 5)

	rows := []map[string]any{
		{"id": "b", "name": "beta", "memory_type": "note", "relation": "BLOCKS", "distance": int64(2)},
		{"id": "a", "name": "alpha", "memory_type": "note", "relation": "BLOCKS", "distance": int64(1)},
		// Duplicate node on a longer path.
		{"id": "a", "name": "alpha", "memory_type": "note", "relation": "BLOCKS", "distance": int64(2)},
		// Invalid distance defaults to 0.
		{"id": "c", "name": "gamma", "memory_type": "note", "relation": "BLOCKS", "distance": "far"},
		// Rows without an id are dropped.
		{"name": "orphan"},
	}

	nodes := p.ProcessResults(rows)
	require.Len(t, nodes, 3)
	assert.Equal(t, "c", nodes[0].ID)
	assert.Equal(t, 0, nodes[0].Distance)
	assert.Equal(t, "a", nodes[1].ID)
	assert.Equal(t, 1, nodes[1].Distance)
	assert.Equal(t, "b", nodes[2].ID)
	assert.Equal(t, 2, nodes[2].Distance)
}

func TestTraverse(t *testing.T) {
	store := &fakeStore{
		queryFn: func(string, map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				{"id": "n1", "name": "first", "memory_type": "note", "relation": "RELATES_TO", "distance": int64(1), "strength": 0.5, "source": "agent"},
			}, nil
		},
	}
	p := NewTraversalProcessor(store, 5)

	nodes, err := p.Traverse(context.Background(), TraversalOptions{TraverseFrom: "mem-1"})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, 0.5, nodes[0].Strength)
	assert.Equal(t, "agent", nodes[0].Source)

	t.Run("empty result is not an error", func(t *testing.T) {
		empty := NewTraversalProcessor(&fakeStore{}, 5)
		nodes, err := empty.Traverse(context.Background(), TraversalOptions{TraverseFrom: "mem-1"})
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("validation happens before any store call", func(t *testing.T) {
		store := &fakeStore{}
		p := NewTraversalProcessor(store, 5)
		_, err := p.Traverse(context.Background(), TraversalOptions{TraverseFrom: "x", MaxDepth: 99})
		require.Error(t, err)
		assert.Empty(t, store.queries)
	})
}
