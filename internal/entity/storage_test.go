package entity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/util"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := OpenStorage(context.Background(), filepath.Join(t.TempDir(), "entities.db"), observability.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_CreateAndLoad(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	e := &Entity{TypeID: "node", Bundle: "article", Label: "Hello", Fields: map[string]any{"body": "text"}}
	require.NoError(t, s.Create(ctx, e))

	assert.NotZero(t, e.ID)
	_, err := uuid.Parse(e.UUID)
	assert.NoError(t, err)

	loaded, err := s.Load(ctx, "node", "1")
	require.NoError(t, err)
	assert.Equal(t, e.UUID, loaded.UUID)
	assert.Equal(t, "text", loaded.Fields["body"])
	assert.Equal(t, Reference{TypeID: "node", Bundle: "article", UUID: e.UUID}, loaded.Reference())

	byUUID, err := s.LoadByUUID(ctx, "node", e.UUID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, byUUID.ID)
}

func TestStorage_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &Entity{TypeID: "node", Bundle: "article"}))

	tests := []struct {
		name string
		load func() (*Entity, error)
	}{
		{name: "missing id", load: func() (*Entity, error) { return s.Load(ctx, "node", "42") }},
		{name: "non numeric id", load: func() (*Entity, error) { return s.Load(ctx, "node", "abc") }},
		{name: "wrong type", load: func() (*Entity, error) { return s.Load(ctx, "user", "1") }},
		{name: "missing uuid", load: func() (*Entity, error) { return s.LoadByUUID(ctx, "node", uuid.NewString()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.load()
			assert.True(t, errors.Is(err, ErrNotFound))
			assert.True(t, errors.Is(err, util.ErrNotFound))
		})
	}
}

func TestStorage_SaveDeleteList(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	first := &Entity{TypeID: "node", Bundle: "article", Label: "one"}
	second := &Entity{TypeID: "node", Bundle: "news", Label: "two"}
	other := &Entity{TypeID: "user", Bundle: "user", Label: "admin"}
	for _, e := range []*Entity{first, second, other} {
		require.NoError(t, s.Create(ctx, e))
	}

	first.Label = "renamed"
	require.NoError(t, s.Save(ctx, first))

	nodes, err := s.List(ctx, "node")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "renamed", nodes[0].Label)
	assert.Equal(t, "two", nodes[1].Label)

	require.NoError(t, s.Delete(ctx, first))
	assert.True(t, errors.Is(s.Delete(ctx, first), ErrNotFound))

	nodes, err = s.List(ctx, "node")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	assert.NoError(t, s.Ping(ctx))
}

func TestOpenStorage_Memory(t *testing.T) {
	t.Parallel()

	s, err := OpenStorage(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Create(context.Background(), &Entity{TypeID: "node", Bundle: "page"}))
	list, err := s.List(context.Background(), "node")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSeed(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	fixtures := []config.FixtureConfig{
		{EntityType: "node", Bundle: "article", UUID: "8b1a9953-c461-4296-a1b6-43b8b1b8f6d2", Label: "Fixed"},
		{EntityType: "node", Bundle: "news", Label: "Generated"},
	}

	created, err := Seed(ctx, s, fixtures, observability.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = Seed(ctx, s, fixtures, observability.NopLogger())
	require.NoError(t, err)
	assert.Zero(t, created)

	e, err := s.LoadByUUID(ctx, "node", "8b1a9953-c461-4296-a1b6-43b8b1b8f6d2")
	require.NoError(t, err)
	assert.Equal(t, "Fixed", e.Label)
}
