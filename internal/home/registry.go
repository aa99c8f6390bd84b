package home

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the authoritative, thread-safe store of rooms. It guards only
// the rooms map; each room carries its own guard so independent rooms
// progress independently.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]*Room
	decayK float64
}

func NewRegistry(decayK float64) *Registry {
	return &Registry{rooms: map[uuid.UUID]*Room{}, decayK: decayK}
}

func (g *Registry) AddRoom(name string, width, height float64) (*Room, error) {
	r, err := NewRoom(name, width, height, g.decayK)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.rooms[r.ID] = r
	g.mu.Unlock()
	return r, nil
}

// RemoveRoom unregisters a room and disposes its devices. The caller is
// responsible for stopping the room's simulation engine before disposal
// completes; see the server's engine set.
func (g *Registry) RemoveRoom(id uuid.UUID) (*Room, bool) {
	g.mu.Lock()
	r, ok := g.rooms[id]
	if ok {
		delete(g.rooms, id)
	}
	g.mu.Unlock()
	if !ok {
		return nil, false
	}
	r.dispose()
	return r, true
}

// ClearRooms removes every room and returns them so their engines can be
// stopped.
func (g *Registry) ClearRooms() []*Room {
	g.mu.Lock()
	removed := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		removed = append(removed, r)
	}
	g.rooms = map[uuid.UUID]*Room{}
	g.mu.Unlock()
	for _, r := range removed {
		r.dispose()
	}
	return removed
}

func (g *Registry) ContainsRoom(id uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.rooms[id]
	return ok
}

func (g *Registry) GetRoom(id uuid.UUID) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// Rooms returns a snapshot of the registered rooms.
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
