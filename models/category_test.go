package models

import (
	"testing"

	"github.com/aukilabs/raido/spatial"
	"github.com/stretchr/testify/require"
)

func newTestCategory(t *testing.T, cfg spatial.TreeConfig) *Category {
	t.Helper()
	return NewCategory("npc", spatial.NewRTree3D(cfg), false)
}

func TestCategoryEntityLifecycle(t *testing.T) {
	c := newTestCategory(t, spatial.TreeConfig{})

	require.NoError(t, c.AddEntity(1, spatial.NewVec3(0, 0, 0)))
	require.Error(t, c.AddEntity(1, spatial.NewVec3(1, 1, 1)))
	require.Equal(t, 1, c.Size())

	p, ok := c.NearestNeighbour(spatial.NewVec3(0, 0, 0))
	require.True(t, ok)
	require.Equal(t, spatial.EntityID(1), p.Entity)

	require.True(t, c.RemoveEntity(1))
	require.False(t, c.RemoveEntity(1))
	require.Equal(t, 0, c.Size())
}

func TestCategoryMoveIsDeferredToFrameCommit(t *testing.T) {
	c := newTestCategory(t, spatial.TreeConfig{MinMoved: 1.0})

	require.NoError(t, c.AddEntity(1, spatial.NewVec3(0, 0, 0)))
	require.NoError(t, c.MoveEntity(1, spatial.NewVec3(10, 0, 0)))

	// the tree is stale until the frame is committed
	p, _ := c.NearestNeighbour(spatial.NewVec3(10, 0, 0))
	require.True(t, p.Position.Equal(spatial.NewVec3(0, 0, 0)))

	c.CommitFrame()

	p, _ = c.NearestNeighbour(spatial.NewVec3(10, 0, 0))
	require.True(t, p.Position.Equal(spatial.NewVec3(10, 0, 0)))
}

func TestCategoryStore(t *testing.T) {
	store := NewCategoryStore()

	npc := newTestCategory(t, spatial.TreeConfig{})
	require.NoError(t, store.Add(npc))
	require.Error(t, store.Add(npc))

	got, ok := store.Get("npc")
	require.True(t, ok)
	require.Equal(t, npc, got)

	_, ok = store.Get("player")
	require.False(t, ok)

	require.Len(t, store.List(), 1)
}

func TestCategoryStoreCommitFrames(t *testing.T) {
	store := NewCategoryStore()

	npc := newTestCategory(t, spatial.TreeConfig{})
	require.NoError(t, store.Add(npc))

	require.NoError(t, npc.AddEntity(1, spatial.NewVec3(0, 0, 0)))
	require.NoError(t, npc.MoveEntity(1, spatial.NewVec3(5, 0, 0)))

	store.CommitFrames()

	p, ok := npc.NearestNeighbour(spatial.NewVec3(5, 0, 0))
	require.True(t, ok)
	require.True(t, p.Position.Equal(spatial.NewVec3(5, 0, 0)))
}
