package recall_test

import (
	"context"
	"testing"

	"github.com/soundprediction/recall"
	"github.com/soundprediction/recall/pkg/errs"
	"github.com/soundprediction/recall/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGraphDriver is an in-memory implementation for testing
type MockGraphDriver struct {
	memories  map[string]*types.Memory
	relations []*types.Relation
	touched   []string
}

func NewMockGraphDriver() *MockGraphDriver {
	return &MockGraphDriver{memories: make(map[string]*types.Memory)}
}

func (m *MockGraphDriver) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func (m *MockGraphDriver) GetMemory(ctx context.Context, id string) (*types.Memory, error) {
	memory, ok := m.memories[id]
	if !ok {
		return nil, errs.NotFound("memory", id)
	}
	return memory, nil
}

func (m *MockGraphDriver) UpsertMemory(ctx context.Context, memory *types.Memory) error {
	m.memories[memory.ID] = memory
	return nil
}

func (m *MockGraphDriver) DeleteMemory(ctx context.Context, id string) error {
	delete(m.memories, id)
	return nil
}

func (m *MockGraphDriver) MemoryExists(ctx context.Context, id string) (bool, error) {
	_, ok := m.memories[id]
	return ok, nil
}

func (m *MockGraphDriver) CreateRelation(ctx context.Context, relation *types.Relation) error {
	m.relations = append(m.relations, relation)
	return nil
}

func (m *MockGraphDriver) DeleteRelation(ctx context.Context, fromID, toID, relationType string) error {
	return nil
}

func (m *MockGraphDriver) TouchLastAccessed(ctx context.Context, id string) error {
	m.touched = append(m.touched, id)
	return nil
}

func (m *MockGraphDriver) VerifyConnectivity(ctx context.Context) error { return nil }
func (m *MockGraphDriver) Close(ctx context.Context) error              { return nil }

func newTestClient(t *testing.T) (*recall.Client, *MockGraphDriver) {
	t.Helper()
	store := NewMockGraphDriver()
	client, err := recall.NewClient(store, nil, nil, nil)
	require.NoError(t, err)
	return client, store
}

func TestNewClientRequiresDriver(t *testing.T) {
	_, err := recall.NewClient(nil, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeValidation))
}

func TestCreateMemory(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	t.Run("assigns id and timestamps", func(t *testing.T) {
		memory, err := client.CreateMemory(ctx, &types.Memory{Name: "retro notes", MemoryType: "note"})
		require.NoError(t, err)
		assert.NotEmpty(t, memory.ID)
		assert.False(t, memory.CreatedAt.IsZero())
		assert.False(t, memory.ModifiedAt.IsZero())
		assert.Contains(t, store.memories, memory.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := client.CreateMemory(ctx, &types.Memory{MemoryType: "note"})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})

	t.Run("rejects nil memory", func(t *testing.T) {
		_, err := client.CreateMemory(ctx, nil)
		require.Error(t, err)
	})
}

func TestGetMemoryBumpsLastAccessed(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	created, err := client.CreateMemory(ctx, &types.Memory{Name: "standup summary"})
	require.NoError(t, err)

	got, err := client.GetMemory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Contains(t, store.touched, created.ID)
}

func TestGetMemoryNotFound(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.GetMemory(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeNotFound))
}

func TestUpdateMemoryRequiresExistence(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.UpdateMemory(context.Background(), &types.Memory{ID: "ghost", Name: "x"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeNotFound))
}

func TestCreateRelation(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	from, err := client.CreateMemory(ctx, &types.Memory{Name: "service A"})
	require.NoError(t, err)
	to, err := client.CreateMemory(ctx, &types.Memory{Name: "service B"})
	require.NoError(t, err)

	t.Run("both endpoints must exist", func(t *testing.T) {
		err := client.CreateRelation(ctx, &types.Relation{
			FromID:       from.ID,
			ToID:         "nonexistent",
			RelationType: "depends_on",
		})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeNotFound))
		assert.Empty(t, store.relations)
	})

	t.Run("creates valid relation", func(t *testing.T) {
		err := client.CreateRelation(ctx, &types.Relation{
			FromID:       from.ID,
			ToID:         to.ID,
			RelationType: "depends_on",
			Strength:     0.8,
			Source:       types.SourceAgent,
		})
		require.NoError(t, err)
		require.Len(t, store.relations, 1)
		assert.False(t, store.relations[0].CreatedAt.IsZero())
	})

	t.Run("rejects out-of-range strength", func(t *testing.T) {
		err := client.CreateRelation(ctx, &types.Relation{
			FromID:       from.ID,
			ToID:         to.ID,
			RelationType: "depends_on",
			Strength:     1.5,
		})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeValidation))
	})
}

func TestDeleteMemory(t *testing.T) {
	client, store := newTestClient(t)
	ctx := context.Background()

	memory, err := client.CreateMemory(ctx, &types.Memory{Name: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, client.DeleteMemory(ctx, memory.ID))
	assert.NotContains(t, store.memories, memory.ID)

	err = client.DeleteMemory(ctx, "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeValidation))
}
