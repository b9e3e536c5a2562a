package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// treeSpy records mutation calls while delegating to a real tree.
type treeSpy struct {
	SpatialAccess

	recreates    int
	addedPoints  int
	removedByID  int
	lastRecreate []TrackedPoint
}

func (s *treeSpy) Recreate(all []TrackedPoint) {
	s.recreates++
	s.lastRecreate = all
	s.SpatialAccess.Recreate(all)
}

func (s *treeSpy) AddPoint(p TrackedPoint) {
	s.addedPoints++
	s.SpatialAccess.AddPoint(p)
}

func (s *treeSpy) RemoveEntity(id EntityID) bool {
	s.removedByID++
	return s.SpatialAccess.RemoveEntity(id)
}

func newTestUpdater(cfg TreeConfig, snapshot []TrackedPoint) (*Updater, *treeSpy) {
	tree := NewRTree3D(cfg)
	tree.Recreate(snapshot)

	spy := &treeSpy{SpatialAccess: tree}
	u := &Updater{
		Category: "test",
		Tree:     spy,
		Snapshot: func() []TrackedPoint { return snapshot },
	}
	return u, spy
}

func TestCommitFrameThreshold(t *testing.T) {
	t.Run("below threshold move is ignored", func(t *testing.T) {
		u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0}, []TrackedPoint{
			NewTrackedPoint(NewVec3(0, 0, 0), 1),
		})

		u.CommitFrame([]Movement{
			{Entity: 1, From: NewVec3(0, 0, 0), To: NewVec3(0.5, 0, 0)},
		})

		require.Equal(t, 0, spy.addedPoints)
		require.Equal(t, 0, spy.removedByID)
		require.Equal(t, 0, spy.recreates)

		// the tree stays stale at the last committed coordinate
		p, ok := u.Tree.NearestNeighbour(NewVec3(0, 0, 0))
		require.True(t, ok)
		require.True(t, p.Position.Equal(NewVec3(0, 0, 0)))
	})

	t.Run("over threshold move is patched", func(t *testing.T) {
		u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0}, []TrackedPoint{
			NewTrackedPoint(NewVec3(0, 0, 0), 1),
		})

		u.CommitFrame([]Movement{
			{Entity: 1, From: NewVec3(0, 0, 0), To: NewVec3(2, 0, 0)},
		})

		require.Equal(t, 1, spy.addedPoints)
		require.Equal(t, 1, spy.removedByID)
		require.Equal(t, 0, spy.recreates)
		require.Equal(t, 1, u.Tree.Size())

		p, ok := u.Tree.NearestNeighbour(NewVec3(2, 0, 0))
		require.True(t, ok)
		require.True(t, p.Position.Equal(NewVec3(2, 0, 0)))
	})
}

func TestCommitFrameRecreate(t *testing.T) {
	snapshot := []TrackedPoint{
		NewTrackedPoint(NewVec3(10, 0, 0), 1),
		NewTrackedPoint(NewVec3(0, 10, 0), 2),
		NewTrackedPoint(NewVec3(0, 0, 10), 3),
	}

	t.Run("too many movers triggers one recreate", func(t *testing.T) {
		u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0, RecreateAfter: 2}, snapshot)

		u.CommitFrame([]Movement{
			{Entity: 1, From: NewVec3(0, 0, 0), To: NewVec3(10, 0, 0)},
			{Entity: 2, From: NewVec3(0, 0, 0), To: NewVec3(0, 10, 0)},
			{Entity: 3, From: NewVec3(0, 0, 0), To: NewVec3(0, 0, 10)},
		})

		require.Equal(t, 1, spy.recreates)
		require.Equal(t, 0, spy.addedPoints)
		require.Equal(t, 0, spy.removedByID)
		require.Len(t, spy.lastRecreate, 3)
		require.Equal(t, 3, u.Tree.Size())
	})

	t.Run("movers at the limit are patched", func(t *testing.T) {
		u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0, RecreateAfter: 2}, snapshot)

		u.CommitFrame([]Movement{
			{Entity: 1, From: NewVec3(10, 0, 0), To: NewVec3(12, 0, 0)},
			{Entity: 2, From: NewVec3(0, 10, 0), To: NewVec3(0, 12, 0)},
		})

		require.Equal(t, 0, spy.recreates)
		require.Equal(t, 2, spy.addedPoints)
		require.Equal(t, 2, spy.removedByID)
		require.Equal(t, 3, u.Tree.Size())
	})

	t.Run("below threshold movers do not count toward the limit", func(t *testing.T) {
		u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0, RecreateAfter: 2}, snapshot)

		u.CommitFrame([]Movement{
			{Entity: 1, From: NewVec3(10, 0, 0), To: NewVec3(12, 0, 0)},
			{Entity: 2, From: NewVec3(0, 10, 0), To: NewVec3(0, 12, 0)},
			{Entity: 3, From: NewVec3(0, 0, 10), To: NewVec3(0, 0, 10.1)},
		})

		require.Equal(t, 0, spy.recreates)
		require.Equal(t, 2, spy.addedPoints)
	})

	t.Run("empty frame is a no op", func(t *testing.T) {
		u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0, RecreateAfter: 2}, snapshot)

		u.CommitFrame(nil)

		require.Equal(t, 0, spy.recreates)
		require.Equal(t, 0, spy.addedPoints)
	})
}

func TestCommitFrameForceRecreate(t *testing.T) {
	snapshot := []TrackedPoint{
		NewTrackedPoint(NewVec3(5, 0, 0), 1),
	}

	u, spy := newTestUpdater(TreeConfig{MinMoved: 1.0, RecreateAfter: 100}, snapshot)
	u.ForceRecreate = true

	u.CommitFrame([]Movement{
		{Entity: 1, From: NewVec3(0, 0, 0), To: NewVec3(5, 0, 0)},
	})

	require.Equal(t, 1, spy.recreates)
	require.Equal(t, 0, spy.addedPoints)
}

func TestTrackUntrack(t *testing.T) {
	u, _ := newTestUpdater(TreeConfig{}, nil)

	u.Track(NewTrackedPoint(NewVec3(1, 2, 3), 7))
	require.Equal(t, 1, u.Tree.Size())

	require.True(t, u.Untrack(7))
	require.False(t, u.Untrack(7))
	require.Equal(t, 0, u.Tree.Size())
}
