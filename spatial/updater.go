package spatial

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Movement is one observed position change for a tracked entity,
// reported by the host that owns the entity positions.
type Movement struct {
	Entity EntityID
	From   Vec3
	To     Vec3
}

// Updater keeps one spatial tree consistent with the host's entity
// positions, one frame at a time.
//
// Movements below the tree's MinMoved squared displacement are ignored,
// leaving the tree stale for those entities by a bounded, configured
// amount. When more than RecreateAfter entities moved in one frame, the
// per point patches are skipped entirely and the tree is recreated once
// from the full snapshot, which is cheaper than many individual tree
// edits.
//
// All methods assume the exclusive access discipline described on
// SpatialAccess: one writer, no concurrent queries during a mutation.
type Updater struct {
	// The tracked category name, used for logs and metrics. Categories
	// are independent: each has its own tree, snapshot and policy.
	Category string

	// The maintained tree.
	Tree SpatialAccess

	// Returns the current full set of tracked entity positions, the
	// source of truth owned by the host. Called at most once per
	// committed frame, when a recreation is triggered.
	Snapshot func() []TrackedPoint

	// Skips the incremental path and recreates the tree on every frame
	// that saw an over threshold movement.
	ForceRecreate bool
}

// Track indexes an entity that entered tracking.
func (u *Updater) Track(p TrackedPoint) {
	u.Tree.AddPoint(p)
	spatialTrackedPoints.WithLabelValues(u.Category).Set(float64(u.Tree.Size()))
}

// Untrack removes an entity that left tracking, wherever it was last
// committed. Reports whether the entity was indexed.
func (u *Updater) Untrack(id EntityID) bool {
	removed := u.Tree.RemoveEntity(id)
	spatialTrackedPoints.WithLabelValues(u.Category).Set(float64(u.Tree.Size()))
	return removed
}

// CommitFrame applies one frame's movement observations to the tree,
// either as point level patches or as a single bulk recreation.
func (u *Updater) CommitFrame(frame []Movement) {
	minMoved := u.Tree.MinMoved()

	moved := make([]Movement, 0, len(frame))
	for _, m := range frame {
		if u.Tree.DistanceSquared(m.From, m.To) < minMoved {
			spatialSkippedMoves.WithLabelValues(u.Category).Inc()
			continue
		}
		moved = append(moved, m)
	}

	if len(moved) == 0 {
		return
	}

	if u.ForceRecreate || len(moved) > u.Tree.RecreateAfter() {
		u.Tree.Recreate(u.Snapshot())
		spatialRecreates.WithLabelValues(u.Category).Inc()

		logs.WithTag("category", u.Category).
			WithTag("moved", len(moved)).
			WithTag("size", u.Tree.Size()).
			Debug("recreated spatial tree")
	} else {
		for _, m := range moved {
			u.Tree.RemoveEntity(m.Entity)
			u.Tree.AddPoint(TrackedPoint{Position: m.To, Entity: m.Entity})
			spatialPointPatches.WithLabelValues(u.Category).Inc()
		}
	}

	spatialTrackedPoints.WithLabelValues(u.Category).Set(float64(u.Tree.Size()))
}
