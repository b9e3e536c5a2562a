package models

import (
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/raido/spatial"
)

// Entity is a tracked entity with its current position, the source of
// truth the spatial trees are kept consistent with.
type Entity struct {
	ID spatial.EntityID

	mutex    sync.RWMutex
	position spatial.Vec3
}

func (e *Entity) SetPosition(v spatial.Vec3) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.position = v
}

func (e *Entity) Position() spatial.Vec3 {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	return e.position
}

// EntityStore holds the entities of one tracked category and captures
// their position deltas until the next frame commit.
type EntityStore struct {
	mutex     sync.RWMutex
	entities  map[spatial.EntityID]*Entity
	movements map[spatial.EntityID]spatial.Movement
}

func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities:  make(map[spatial.EntityID]*Entity),
		movements: make(map[spatial.EntityID]spatial.Movement),
	}
}

func (s *EntityStore) Add(id spatial.EntityID, position spatial.Vec3) (*Entity, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.entities[id]; ok {
		return nil, errors.New("entity is already added").WithTag("entity_id", id)
	}

	e := &Entity{ID: id, position: position}
	s.entities[id] = e
	return e, nil
}

func (s *EntityStore) Get(id spatial.EntityID) (*Entity, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entities[id]
	return e, ok
}

func (s *EntityStore) Remove(id spatial.EntityID) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.entities[id]
	delete(s.entities, id)
	delete(s.movements, id)
	return ok
}

// SetPosition updates an entity position and records the delta for the
// current frame. Multiple updates to the same entity within one frame
// are coalesced into a single movement keeping the original origin, so
// the maintenance policy judges the net displacement.
func (s *EntityStore) SetPosition(id spatial.EntityID, position spatial.Vec3) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return errors.New("entity is not added").WithTag("entity_id", id)
	}

	from := e.Position()
	if m, ok := s.movements[id]; ok {
		from = m.From
	}
	s.movements[id] = spatial.Movement{Entity: id, From: from, To: position}

	e.SetPosition(position)
	return nil
}

// Snapshot returns the current position of every entity in the store.
func (s *EntityStore) Snapshot() []spatial.TrackedPoint {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	points := make([]spatial.TrackedPoint, 0, len(s.entities))
	for _, e := range s.entities {
		points = append(points, spatial.NewTrackedPoint(e.Position(), e.ID))
	}
	return points
}

// DrainMovements returns the movements observed since the last drain
// and resets the batch.
func (s *EntityStore) DrainMovements() []spatial.Movement {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.movements) == 0 {
		return nil
	}

	movements := make([]spatial.Movement, 0, len(s.movements))
	for _, m := range s.movements {
		movements = append(movements, m)
	}
	s.movements = make(map[spatial.EntityID]spatial.Movement)
	return movements
}

func (s *EntityStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entities)
}
