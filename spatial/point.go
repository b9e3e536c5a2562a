package spatial

import "github.com/dhconnelly/rtreego"

// EntityID identifies a tracked entity. It is opaque to the index and
// owned by the host application.
type EntityID uint32

// TrackedPoint binds a coordinate to the entity it belongs to. It is
// immutable once constructed: a moving entity is represented by
// removing its old point and inserting a new one, or by a full tree
// recreation.
type TrackedPoint struct {
	Position Vec3
	Entity   EntityID
}

func NewTrackedPoint(position Vec3, entity EntityID) TrackedPoint {
	return TrackedPoint{Position: position, Entity: entity}
}

// treeEntry adapts a TrackedPoint to rtreego.Spatial with an envelope
// degenerate to a single point.
type treeEntry struct {
	rect  rtreego.Rect
	point TrackedPoint
}

func newTreeEntry(p TrackedPoint, dims int) *treeEntry {
	return &treeEntry{
		rect:  projectPoint(p.Position, dims).ToRect(0),
		point: p,
	}
}

func (e *treeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// projectPoint converts a coordinate to the tree's native point type.
// For 2 dimensional trees the Z component is dropped, a documented
// lossy projection.
func projectPoint(v Vec3, dims int) rtreego.Point {
	if dims == Dims2D {
		return rtreego.Point{v.X, v.Y}
	}
	return rtreego.Point{v.X, v.Y, v.Z}
}
