package search

import (
	"context"
	"strings"
	"testing"

	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records the queries it receives and answers them through a
// caller-provided function.
type fakeStore struct {
	queries []string
	params  []map[string]any
	queryFn func(cypher string, params map[string]any) ([]map[string]any, error)
}

func (f *fakeStore) ExecuteQuery(_ context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.queries = append(f.queries, cypher)
	f.params = append(f.params, params)
	if f.queryFn == nil {
		return nil, nil
	}
	return f.queryFn(cypher, params)
}

func (f *fakeStore) GetMemory(context.Context, string) (*types.Memory, error) { return nil, nil }
func (f *fakeStore) UpsertMemory(context.Context, *types.Memory) error        { return nil }
func (f *fakeStore) DeleteMemory(context.Context, string) error               { return nil }
func (f *fakeStore) MemoryExists(context.Context, string) (bool, error)       { return false, nil }
func (f *fakeStore) CreateRelation(context.Context, *types.Relation) error    { return nil }
func (f *fakeStore) DeleteRelation(context.Context, string, string, string) error {
	return nil
}
func (f *fakeStore) TouchLastAccessed(context.Context, string) error { return nil }
func (f *fakeStore) VerifyConnectivity(context.Context) error        { return nil }
func (f *fakeStore) Close(context.Context) error                     { return nil }

// fakeEmbedder returns a fixed vector and counts invocations.
type fakeEmbedder struct {
	vector []float32
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls += len(texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	f.calls++
	return f.vector, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vector) }
func (f *fakeEmbedder) Close() error    { return nil }

func memoryRow(id, name string, embedding []float32) map[string]any {
	vec := make([]any, len(embedding))
	for i, f := range embedding {
		vec[i] = float64(f)
	}
	return map[string]any{
		"id":          id,
		"name":        name,
		"memory_type": "note",
		"metadata":    `{"k":"v"}`,
		"embedding":   vec,
	}
}

func noContext() *bool {
	off := false
	return &off
}

func TestSearchValidation(t *testing.T) {
	s := NewSearcher(&fakeStore{}, nil, nil)

	t.Run("negative limit", func(t *testing.T) {
		_, err := s.Search(context.Background(), "*", Options{Limit: -1})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := s.Search(context.Background(), "anything", Options{Threshold: 1.5})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})

	t.Run("bad date filter rejected before any store call", func(t *testing.T) {
		store := &fakeStore{}
		s := NewSearcher(store, nil, nil)
		_, err := s.Search(context.Background(), "*", Options{
			DateFilters: DateFilterOptions{CreatedAfter: "whenever"},
		})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeValidation))
		assert.Empty(t, store.queries)
	})
}

func TestSearchWildcard(t *testing.T) {
	store := &fakeStore{
		queryFn: func(string, map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				memoryRow("a", "alpha", nil),
				memoryRow("b", "beta", nil),
			}, nil
		},
	}
	s := NewSearcher(store, nil, nil)

	results, err := s.Search(context.Background(), "*", Options{IncludeGraphContext: noContext()})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 1.0, r.Score)
		assert.Equal(t, types.MatchWildcard, r.MatchType)
	}
	require.Len(t, store.params, 1)
	assert.Equal(t, int64(10), store.params[0]["limit"])
}

func TestSearchIdentifierNeverEmbeds(t *testing.T) {
	store := &fakeStore{
		queryFn: func(string, map[string]any) ([]map[string]any, error) {
			return []map[string]any{memoryRow("123e4567-e89b-12d3-a456-426614174000", "release", nil)}, nil
		},
	}
	embed := &fakeEmbedder{vector: []float32{1, 0}}
	s := NewSearcher(store, embed, nil)

	results, err := s.Search(context.Background(),
		"123e4567-e89b-12d3-a456-426614174000",
		Options{IncludeGraphContext: noContext()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.MatchMetadata, results[0].MatchType)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Zero(t, embed.calls)
	assert.Contains(t, store.queries[0], "$identifier")
}

func TestSearchSemantic(t *testing.T) {
	store := &fakeStore{
		queryFn: func(string, map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				memoryRow("far", "unrelated", []float32{0, 1}),
				memoryRow("near", "close match", []float32{1, 0.01}),
				memoryRow("mid", "loose match", []float32{1, 1}),
			}, nil
		},
	}
	embed := &fakeEmbedder{vector: []float32{1, 0}}
	s := NewSearcher(store, embed, nil)

	results, err := s.Search(context.Background(), "machine learning",
		Options{Threshold: 0.5, IncludeGraphContext: noContext()})
	require.NoError(t, err)

	// One embedding computation, results sorted by descending similarity,
	// everything below threshold dropped.
	assert.Equal(t, 1, embed.calls)
	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].Memory.ID)
	assert.Equal(t, "mid", results[1].Memory.ID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.5)
		assert.Equal(t, types.MatchVector, r.MatchType)
	}
}

func TestSearchSemanticWithoutEmbedder(t *testing.T) {
	s := NewSearcher(&fakeStore{}, nil, nil)
	_, err := s.Search(context.Background(), "plain words", Options{IncludeGraphContext: noContext()})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeService))
}

func TestSearchMemoryTypeFilter(t *testing.T) {
	store := &fakeStore{}
	s := NewSearcher(store, nil, nil)

	_, err := s.Search(context.Background(), "*", Options{
		MemoryTypes:         []string{"note", "task"},
		IncludeGraphContext: noContext(),
	})
	require.NoError(t, err)
	require.Len(t, store.queries, 1)
	assert.Contains(t, store.queries[0], "m.memory_type IN $memory_types")
	assert.Equal(t, []string{"note", "task"}, store.params[0]["memory_types"])
}

func TestSearchZeroMatchesIsEmptyNotError(t *testing.T) {
	s := NewSearcher(&fakeStore{}, nil, nil)
	results, err := s.Search(context.Background(), "42", Options{IncludeGraphContext: noContext()})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchErrorCarriesQuery(t *testing.T) {
	store := &fakeStore{
		queryFn: func(string, map[string]any) ([]map[string]any, error) {
			return nil, errs.New(errs.CodeStore, "graph store unreachable")
		},
	}
	s := NewSearcher(store, nil, nil)

	_, err := s.Search(context.Background(), "*", Options{IncludeGraphContext: noContext()})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeStore))
	assert.Contains(t, err.Error(), `"*"`)
}

func TestSearchGraphContextEnrichment(t *testing.T) {
	store := &fakeStore{
		queryFn: func(cypher string, _ map[string]any) ([]map[string]any, error) {
			if strings.Contains(cypher, "UNWIND") {
				return []map[string]any{
					{
						"anchor_id": "a", "side": "descendant",
						"id": "child", "name": "child node", "memory_type": "note",
						"relation": "DEPENDS_ON", "distance": int64(1), "strength": 0.9,
					},
					// Same node again on a longer path; the shorter one wins.
					{
						"anchor_id": "a", "side": "descendant",
						"id": "child", "name": "child node", "memory_type": "note",
						"relation": "DEPENDS_ON", "distance": int64(2), "strength": 0.9,
					},
					{
						"anchor_id": "a", "side": "ancestor",
						"id": "parent", "name": "parent node", "memory_type": "note",
						"relation": "CONTAINS", "distance": int64(1),
					},
				}, nil
			}
			return []map[string]any{memoryRow("a", "alpha", nil), memoryRow("b", "beta", nil)}, nil
		},
	}
	s := NewSearcher(store, nil, nil)

	results, err := s.Search(context.Background(), "*", Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	enriched := results[0].Memory
	require.NotNil(t, enriched.Related)
	require.Len(t, enriched.Related.Descendants, 1)
	assert.Equal(t, 1, enriched.Related.Descendants[0].Distance)
	require.Len(t, enriched.Related.Ancestors, 1)
	assert.Equal(t, "parent", enriched.Related.Ancestors[0].ID)

	// Nothing reachable from b, so its context stays nil.
	assert.Nil(t, results[1].Memory.Related)
}
