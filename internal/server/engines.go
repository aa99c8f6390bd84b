package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"HeatGrid/internal/home"
	"HeatGrid/internal/sim"
)

// engineSet owns one simulation engine per room plus the event-stream hook
// that bridges sensor temperature changes into the subscriber feed.
type engineSet struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]*engineEntry
	interval time.Duration
	log      *zap.Logger
	metrics  *Metrics
}

type engineEntry struct {
	engine *sim.Engine
	detach func()
}

func newEngineSet(interval time.Duration, log *zap.Logger, metrics *Metrics) *engineSet {
	return &engineSet{
		entries:  map[uuid.UUID]*engineEntry{},
		interval: interval,
		log:      log,
		metrics:  metrics,
	}
}

// start begins continuous simulation for a room. Starting an already-running
// room is a no-op.
func (s *engineSet) start(room *home.Room, detach func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[room.ID]; ok {
		return
	}
	engine := sim.NewEngine(room, s.interval, s.log.With(zap.String("room", room.ID.String())))
	if s.metrics != nil {
		engine.OnTick(s.metrics.SimulationTicks.Inc)
	}
	s.entries[room.ID] = &engineEntry{engine: engine, detach: detach}
	engine.Start()
}

// stop halts a room's loop, blocking until it has exited, and releases the
// event hook. Stopping an unknown room is a no-op.
func (s *engineSet) stop(roomID uuid.UUID) {
	s.mu.Lock()
	entry, ok := s.entries[roomID]
	if ok {
		delete(s.entries, roomID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	entry.engine.Stop()
	if entry.detach != nil {
		entry.detach()
	}
}

func (s *engineSet) stopAll() {
	s.mu.Lock()
	entries := make([]*engineEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.entries = map[uuid.UUID]*engineEntry{}
	s.mu.Unlock()
	for _, e := range entries {
		e.engine.Stop()
		if e.detach != nil {
			e.detach()
		}
	}
}
