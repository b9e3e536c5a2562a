package spatial

// SpatialAccess is the query and mutation contract shared by all
// spatial trees, regardless of their dimensionality.
//
// No operation returns an error: duplicate or stale input leaves the
// tree in a documented inconsistent-but-queryable state that the next
// Recreate resolves. The only "not found" outcomes are the booleans on
// the removal operations and on NearestNeighbour.
type SpatialAccess interface {
	// Returns the squared euclidean distance between a and b. Trees
	// configured for 2 dimensions ignore the Z components.
	DistanceSquared(a, b Vec3) float64

	// Returns the closest tracked point to loc, or false when the tree
	// is empty. Ties are broken by tree traversal order: any closest
	// point may be returned.
	NearestNeighbour(loc Vec3) (TrackedPoint, bool)

	// Returns up to k tracked points ordered by non decreasing distance
	// from loc. A tracked point located exactly at loc is included,
	// callers wanting neighbours of that entity skip the first result.
	KNearestNeighbours(loc Vec3, k int) []TrackedPoint

	// Returns all tracked points within distance of loc, in no
	// particular order.
	WithinDistance(loc Vec3, distance float64) []TrackedPoint

	// Replaces the whole tree content with all, using bulk loading.
	// Duplicate entities in all are a caller error and it is undefined
	// which entry survives subsequent removals.
	Recreate(all []TrackedPoint)

	// Inserts one point. Adding a point for an entity that is already
	// tracked leaves two entries in the tree until a removal or a
	// Recreate reconciles them; callers updating a position pair
	// AddPoint with a prior RemovePoint or RemoveEntity.
	AddPoint(p TrackedPoint)

	// Removes the point matching both coordinate and entity. Reports
	// whether a matching entry was found.
	RemovePoint(p TrackedPoint) bool

	// Removes any entry for the entity regardless of its stored
	// coordinate. This is a linear scan over the tree, for when the
	// caller does not know the last committed coordinate. Reports
	// whether anything was removed.
	RemoveEntity(id EntityID) bool

	// The number of indexed points.
	Size() int

	// The squared displacement below which a position change is not
	// worth propagating into the tree.
	MinMoved() float64

	// The number of moved entities per frame above which the tree is
	// recreated instead of patched point by point.
	RecreateAfter() int
}
