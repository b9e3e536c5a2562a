package models

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/raido/spatial"
)

// Category is an independent partition of tracked entities with its own
// spatial tree, entity store and maintenance policy.
//
// It is the concurrency boundary of the system: every tree access goes
// through the category mutex, enforcing the single writer discipline
// the spatial package assumes. Categories share nothing with each
// other.
type Category struct {
	Name string

	mutex    sync.RWMutex
	entities *EntityStore
	updater  *spatial.Updater
}

func NewCategory(name string, tree spatial.SpatialAccess, forceRecreate bool) *Category {
	entities := NewEntityStore()
	return &Category{
		Name:     name,
		entities: entities,
		updater: &spatial.Updater{
			Category:      name,
			Tree:          tree,
			Snapshot:      entities.Snapshot,
			ForceRecreate: forceRecreate,
		},
	}
}

// AddEntity starts tracking an entity at the given position.
func (c *Category) AddEntity(id spatial.EntityID, position spatial.Vec3) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, err := c.entities.Add(id, position); err != nil {
		return err
	}
	c.updater.Track(spatial.NewTrackedPoint(position, id))
	return nil
}

// RemoveEntity stops tracking an entity. Reports whether the entity was
// tracked.
func (c *Category) RemoveEntity(id spatial.EntityID) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := c.entities.Remove(id)
	c.updater.Untrack(id)
	return removed
}

// MoveEntity records a new position for an entity. The spatial tree is
// only patched at the next frame commit.
func (c *Category) MoveEntity(id spatial.EntityID, position spatial.Vec3) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.entities.SetPosition(id, position)
}

// CommitFrame propagates the movements observed since the previous
// commit into the spatial tree.
func (c *Category) CommitFrame() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.updater.CommitFrame(c.entities.DrainMovements())
}

func (c *Category) NearestNeighbour(loc spatial.Vec3) (spatial.TrackedPoint, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.updater.Tree.NearestNeighbour(loc)
}

func (c *Category) KNearestNeighbours(loc spatial.Vec3, k int) []spatial.TrackedPoint {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.updater.Tree.KNearestNeighbours(loc, k)
}

func (c *Category) WithinDistance(loc spatial.Vec3, distance float64) []spatial.TrackedPoint {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.updater.Tree.WithinDistance(loc, distance)
}

func (c *Category) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.updater.Tree.Size()
}

// CategoryStore is the registry of tracked categories.
type CategoryStore struct {
	mutex      sync.RWMutex
	categories map[string]*Category
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{
		categories: make(map[string]*Category),
	}
}

func (s *CategoryStore) Add(c *Category) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.categories[c.Name]; ok {
		return errors.New("category is already added").WithTag("category", c.Name)
	}
	s.categories[c.Name] = c
	return nil
}

func (s *CategoryStore) Get(name string) (*Category, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.categories[name]
	return c, ok
}

func (s *CategoryStore) List() []*Category {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	categories := make([]*Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	return categories
}

// CommitFrames commits the pending movement batch of every category.
func (s *CategoryStore) CommitFrames() {
	for _, c := range s.List() {
		c.CommitFrame()
	}
}

// Run commits frames at the given cadence until the context is
// canceled.
func (s *CategoryStore) Run(ctx context.Context, frameDuration time.Duration) {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.CommitFrames()
		}
	}
}
