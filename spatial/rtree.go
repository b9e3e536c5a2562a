package spatial

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

const (
	Dims2D = 2
	Dims3D = 3

	defaultMinChildren = 25
	defaultMaxChildren = 50

	// Default number of moved entities per frame above which a tree is
	// bulk recreated instead of patched point by point.
	defaultRecreateAfter = 100
)

// TreeConfig holds the per tree policy parameters. They are plain per
// instance configuration so that independent categories of tracked
// entities can run different policies.
type TreeConfig struct {
	// Minimum squared displacement below which a position change is
	// ignored by the maintenance policy. Zero propagates every change.
	MinMoved float64

	// Number of moved entities in one frame above which the whole tree
	// is recreated from a full snapshot instead of patched. Zero picks
	// the default.
	RecreateAfter int

	// R-tree branching factors. Zero picks the defaults.
	MinChildren int
	MaxChildren int
}

func (c TreeConfig) withDefaults() TreeConfig {
	if c.RecreateAfter == 0 {
		c.RecreateAfter = defaultRecreateAfter
	}
	if c.MinChildren == 0 {
		c.MinChildren = defaultMinChildren
	}
	if c.MaxChildren == 0 {
		c.MaxChildren = defaultMaxChildren
	}
	return c
}

// rtreeAccess implements SpatialAccess on top of an rtreego tree. The
// dimensionality is fixed at construction.
type rtreeAccess struct {
	dims int
	cfg  TreeConfig
	tree *rtreego.Rtree
}

// RTree2D indexes tracked points on the XY plane. The Z component of
// inserted and queried coordinates is ignored.
type RTree2D struct {
	rtreeAccess
}

// RTree3D indexes tracked points in 3 dimensional space.
type RTree3D struct {
	rtreeAccess
}

func NewRTree2D(cfg TreeConfig) *RTree2D {
	return &RTree2D{newRTreeAccess(Dims2D, cfg)}
}

func NewRTree3D(cfg TreeConfig) *RTree3D {
	return &RTree3D{newRTreeAccess(Dims3D, cfg)}
}

func newRTreeAccess(dims int, cfg TreeConfig) rtreeAccess {
	cfg = cfg.withDefaults()
	return rtreeAccess{
		dims: dims,
		cfg:  cfg,
		tree: rtreego.NewTree(dims, cfg.MinChildren, cfg.MaxChildren),
	}
}

func (t *rtreeAccess) DistanceSquared(a, b Vec3) float64 {
	if t.dims == Dims2D {
		return a.DistanceSquared2D(b)
	}
	return a.DistanceSquared(b)
}

func (t *rtreeAccess) NearestNeighbour(loc Vec3) (TrackedPoint, bool) {
	res := t.tree.NearestNeighbor(projectPoint(loc, t.dims))
	if res == nil {
		return TrackedPoint{}, false
	}
	return res.(*treeEntry).point, true
}

func (t *rtreeAccess) KNearestNeighbours(loc Vec3, k int) []TrackedPoint {
	if k <= 0 {
		return nil
	}

	res := t.tree.NearestNeighbors(k, projectPoint(loc, t.dims))
	points := make([]TrackedPoint, 0, len(res))
	for _, obj := range res {
		// rtreego pads the result with nils when the tree holds fewer
		// than k points.
		if obj == nil {
			continue
		}
		points = append(points, obj.(*treeEntry).point)
	}
	return points
}

func (t *rtreeAccess) WithinDistance(loc Vec3, distance float64) []TrackedPoint {
	if distance < 0 {
		return nil
	}

	// Bounding box search, then exact filtering on the squared
	// distance to drop the box corners.
	bb := projectPoint(loc, t.dims).ToRect(distance)
	maxDist := distance * distance

	var points []TrackedPoint
	for _, obj := range t.tree.SearchIntersect(bb) {
		p := obj.(*treeEntry).point
		if t.DistanceSquared(loc, p.Position) <= maxDist {
			points = append(points, p)
		}
	}
	return points
}

func (t *rtreeAccess) Recreate(all []TrackedPoint) {
	entries := make([]rtreego.Spatial, len(all))
	for i, p := range all {
		entries[i] = newTreeEntry(p, t.dims)
	}
	t.tree = rtreego.NewTree(t.dims, t.cfg.MinChildren, t.cfg.MaxChildren, entries...)
}

func (t *rtreeAccess) AddPoint(p TrackedPoint) {
	t.tree.Insert(newTreeEntry(p, t.dims))
}

func (t *rtreeAccess) RemovePoint(p TrackedPoint) bool {
	return t.tree.DeleteWithComparator(newTreeEntry(p, t.dims), samePoint)
}

func (t *rtreeAccess) RemoveEntity(id EntityID) bool {
	removed := false
	for _, obj := range t.tree.SearchIntersect(t.everything()) {
		entry := obj.(*treeEntry)
		if entry.point.Entity != id {
			continue
		}
		if t.tree.DeleteWithComparator(entry, sameEntry) {
			removed = true
		}
	}
	return removed
}

func (t *rtreeAccess) Size() int {
	return t.tree.Size()
}

func (t *rtreeAccess) MinMoved() float64 {
	return t.cfg.MinMoved
}

func (t *rtreeAccess) RecreateAfter() int {
	return t.cfg.RecreateAfter
}

// everything returns a rectangle covering the whole indexable space,
// used for the remove by entity scan where the stored coordinate is
// unknown.
func (t *rtreeAccess) everything() rtreego.Rect {
	return projectPoint(Vec3{}, t.dims).ToRect(math.MaxFloat64)
}

func samePoint(a, b rtreego.Spatial) bool {
	return a.(*treeEntry).point == b.(*treeEntry).point
}

func sameEntry(a, b rtreego.Spatial) bool {
	return a.(*treeEntry) == b.(*treeEntry)
}
