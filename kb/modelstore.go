package kb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/subsurfacelabs/potfield/model"
)

var (
	ErrNilSphere      = errors.New("nil sphere")
	ErrSphereExists   = errors.New("sphere already exists")
	ErrSphereNotFound = errors.New("sphere not found")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventSphereAdded EventType = iota
	EventSphereDeactivated
	EventSphereReactivated
)

// Event is emitted to subscribers when the model changes.
type Event struct {
	Type   EventType
	Sphere model.Sphere
}

// Entry pairs a sphere with its activation state, for listings.
type Entry struct {
	Sphere model.Sphere
	Active bool
}

// ModelStore is an in-memory, thread-safe store for the current Earth
// model. Spheres keep their insertion order. Deactivating a sphere keeps
// its slot: Snapshot returns a nil tombstone in its place, which the field
// evaluators skip, so a model edit upstream never reindexes the source
// list handed to the core.
type ModelStore struct {
	mu sync.RWMutex

	order    []string
	spheres  map[string]*model.Sphere
	inactive map[string]bool

	subs []func(Event)
}

// NewModelStore constructs an empty store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		spheres:  make(map[string]*model.Sphere),
		inactive: make(map[string]bool),
	}
}

// AddSphere adds a sphere to the model and returns its ID, generating one
// when the sphere does not carry its own. The stored sphere is treated as
// read-only from then on.
func (ms *ModelStore) AddSphere(s *model.Sphere) (string, error) {
	if s == nil {
		return "", ErrNilSphere
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	ms.mu.Lock()
	if _, exists := ms.spheres[s.ID]; exists {
		ms.mu.Unlock()
		return "", fmt.Errorf("%w: %q", ErrSphereExists, s.ID)
	}
	ms.order = append(ms.order, s.ID)
	ms.spheres[s.ID] = s
	event := Event{Type: EventSphereAdded, Sphere: *s}
	subs := append([]func(Event){}, ms.subs...)
	ms.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return s.ID, nil
}

// GetSphere returns the sphere with the given ID, or nil if not found.
// Callers must not mutate the result.
func (ms *ModelStore) GetSphere(id string) *model.Sphere {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.spheres[id]
}

// Deactivate marks a sphere as inactive. Its slot stays in the model and
// Snapshot reports it as a nil tombstone. Deactivating an inactive sphere
// is a no-op.
func (ms *ModelStore) Deactivate(id string) error {
	return ms.setActive(id, false)
}

// Reactivate restores a deactivated sphere. Reactivating an active sphere
// is a no-op.
func (ms *ModelStore) Reactivate(id string) error {
	return ms.setActive(id, true)
}

func (ms *ModelStore) setActive(id string, active bool) error {
	ms.mu.Lock()
	s, ok := ms.spheres[id]
	if !ok {
		ms.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrSphereNotFound, id)
	}
	if ms.inactive[id] != active {
		// Already in the requested state.
		ms.mu.Unlock()
		return nil
	}

	eventType := EventSphereReactivated
	if active {
		delete(ms.inactive, id)
	} else {
		ms.inactive[id] = true
		eventType = EventSphereDeactivated
	}
	event := Event{Type: eventType, Sphere: *s}
	subs := append([]func(Event){}, ms.subs...)
	ms.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Snapshot returns the model as a source list in insertion order, with nil
// tombstones in the slots of deactivated spheres. The slice is fresh on
// every call; the sphere pointers are shared and read-only.
func (ms *ModelStore) Snapshot() []*model.Sphere {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	res := make([]*model.Sphere, 0, len(ms.order))
	for _, id := range ms.order {
		if ms.inactive[id] {
			res = append(res, nil)
			continue
		}
		res = append(res, ms.spheres[id])
	}
	return res
}

// List returns every sphere with its activation state, in insertion order.
func (ms *ModelStore) List() []Entry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	res := make([]Entry, 0, len(ms.order))
	for _, id := range ms.order {
		res = append(res, Entry{Sphere: *ms.spheres[id], Active: !ms.inactive[id]})
	}
	return res
}

// Counts returns the number of active spheres and the total including
// deactivated ones.
func (ms *ModelStore) Counts() (active, total int) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	total = len(ms.order)
	active = total - len(ms.inactive)
	return active, total
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function.
func (ms *ModelStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.subs = append(ms.subs, fn)
	idx := len(ms.subs) - 1

	return func() {
		ms.mu.Lock()
		defer ms.mu.Unlock()
		if idx < 0 || idx >= len(ms.subs) {
			return
		}
		ms.subs = append(ms.subs[:idx], ms.subs[idx+1:]...)
		idx = -1
	}
}
