package client

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"HeatGrid/internal/protocol"
)

// Sender delivers one outbound message, fire-and-forget.
type Sender func(protocol.Message)

// Cache is the client-side mirror of the server's state. Every inbound
// message is reconciled here under one cache-wide guard. Lookups that miss
// trigger an asynchronous fetch and return nothing; the item becomes visible
// later through the Add reaction to the fetch's response.
type Cache struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*Room
	send     Sender
	log      *zap.Logger
	seq      atomic.Uint64
	nextSub  int
	handlers map[int]func(Event)
}

func NewCache(log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		rooms:    map[uuid.UUID]*Room{},
		log:      log,
		handlers: map[int]func(Event){},
	}
}

// BindSender installs the outbound path used for lazy hydration. Until one
// is bound, cache misses stay misses.
func (c *Cache) BindSender(s Sender) {
	c.mu.Lock()
	c.send = s
	c.mu.Unlock()
}

// OnEvent subscribes to cache change events; the returned function releases
// the subscription.
func (c *Cache) OnEvent(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.handlers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}
}

func (c *Cache) publishLocked(ev Event) {
	for _, fn := range c.handlers {
		fn(ev)
	}
}

/* ------------------------------ Lookups ------------------------------ */

// GetRoom returns the cached mirror, or nothing while an asynchronous fetch
// is dispatched for the miss.
func (c *Cache) GetRoom(id uuid.UUID) (*Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rooms[id]; ok {
		return r, true
	}
	c.fetchLocked(&protocol.GetRoomRequest{Seq: c.seq.Add(1), RoomID: id})
	return nil, false
}

func (c *Cache) GetHeater(roomID, heaterID uuid.UUID) (*Heater, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rooms[roomID]; ok {
		if h, ok := r.Heaters[heaterID]; ok {
			return h, true
		}
	}
	c.fetchLocked(&protocol.GetHeaterRequest{Seq: c.seq.Add(1), RoomID: roomID, HeaterID: heaterID})
	return nil, false
}

func (c *Cache) GetSensor(roomID, sensorID uuid.UUID) (*HeatSensor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.rooms[roomID]; ok {
		if s, ok := r.Sensors[sensorID]; ok {
			return s, true
		}
	}
	c.fetchLocked(&protocol.GetSensorRequest{Seq: c.seq.Add(1), RoomID: roomID, SensorID: sensorID})
	return nil, false
}

// Rooms returns the current mirror set.
func (c *Cache) Rooms() []*Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, r)
	}
	return out
}

func (c *Cache) fetchLocked(req protocol.Message) {
	if c.send == nil {
		return
	}
	send := c.send
	go send(req)
}

// Clear tears the cache down, firing removal events for every mirror.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Cache) clearLocked() {
	for id := range c.rooms {
		delete(c.rooms, id)
		c.publishLocked(RoomRemoved{RoomID: id})
	}
}

/* --------------------------- Reconciliation -------------------------- */

// Apply reconciles one inbound message into the mirror.
func (c *Cache) Apply(msg protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch m := msg.(type) {
	case *protocol.Response:
		c.applyResponseLocked(m)
	case *protocol.RoomAddedBroadcast:
		c.addRoomLocked(m.Room)
	case *protocol.HeaterAddedBroadcast:
		c.addHeaterLocked(m.RoomID, m.Heater)
	case *protocol.SensorAddedBroadcast:
		c.addSensorLocked(m.RoomID, m.Sensor)
	case *protocol.HeaterUpdatedBroadcast:
		c.updateHeaterLocked(m.RoomID, m.Heater)
	case *protocol.RoomRemovedBroadcast:
		c.removeRoomLocked(m.RoomID)
	case *protocol.HeaterRemovedBroadcast:
		c.removeHeaterLocked(m.RoomID, m.HeaterID)
	case *protocol.SensorRemovedBroadcast:
		c.removeSensorLocked(m.RoomID, m.SensorID)
	case *protocol.TemperatureFeed:
		c.applyFeedLocked(m)
	default:
		// Requests never arrive at a client.
	}
}

func (c *Cache) applyResponseLocked(resp *protocol.Response) {
	if !resp.Success {
		c.log.Debug("request failed", zap.String("verb", string(resp.Verb)), zap.Uint64("seq", resp.Seq))
		return
	}
	switch result := resp.Result.(type) {
	case *protocol.RoomListResult:
		c.clearLocked()
		for _, dto := range result.Rooms {
			c.addRoomLocked(dto)
		}
	case *protocol.RoomResult:
		c.addRoomLocked(result.Room)
	case *protocol.HeaterResult:
		// Fetch responses and own-request results land as adds; updates
		// for already-known heaters reconcile in place.
		if r, ok := c.rooms[result.RoomID]; ok {
			if _, known := r.Heaters[result.Heater.ID]; known {
				c.updateHeaterLocked(result.RoomID, result.Heater)
				return
			}
		}
		c.addHeaterLocked(result.RoomID, result.Heater)
	case *protocol.SensorResult:
		c.addSensorLocked(result.RoomID, result.Sensor)
	case *protocol.RoomRemovedResult:
		c.removeRoomLocked(result.RoomID)
	case *protocol.HeaterRemovedResult:
		c.removeHeaterLocked(result.RoomID, result.HeaterID)
	case *protocol.SensorRemovedResult:
		c.removeSensorLocked(result.RoomID, result.SensorID)
	case *protocol.SubscriptionResult, nil:
		// Acks carry no state.
	}
}

// addRoomLocked inserts a room mirror; duplicates are suppressed.
func (c *Cache) addRoomLocked(dto protocol.RoomDTO) {
	if _, ok := c.rooms[dto.ID]; ok {
		return
	}
	r := roomFromDTO(dto)
	c.rooms[dto.ID] = r
	c.publishLocked(RoomAdded{Room: r})
	for _, h := range r.Heaters {
		c.publishLocked(HeaterAdded{RoomID: r.ID, Heater: h})
	}
	for _, s := range r.Sensors {
		c.publishLocked(SensorAdded{RoomID: r.ID, Sensor: s})
	}
}

// addHeaterLocked inserts a heater mirror only when the parent room is
// cached and the id is new; anything else is dropped silently.
func (c *Cache) addHeaterLocked(roomID uuid.UUID, dto protocol.HeaterDTO) {
	r, ok := c.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := r.Heaters[dto.ID]; ok {
		return
	}
	h := heaterFromDTO(dto)
	r.Heaters[dto.ID] = h
	c.publishLocked(HeaterAdded{RoomID: roomID, Heater: h})
}

func (c *Cache) addSensorLocked(roomID uuid.UUID, dto protocol.SensorDTO) {
	r, ok := c.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := r.Sensors[dto.ID]; ok {
		return
	}
	s := sensorFromDTO(dto)
	r.Sensors[dto.ID] = s
	c.publishLocked(SensorAdded{RoomID: roomID, Sensor: s})
}

// updateHeaterLocked mutates a known mirror in place, keeping its identity,
// and fires the change events. An update for an unknown heater self-heals
// into an add instead of being dropped.
func (c *Cache) updateHeaterLocked(roomID uuid.UUID, dto protocol.HeaterDTO) {
	r, ok := c.rooms[roomID]
	if !ok {
		return
	}
	h, ok := r.Heaters[dto.ID]
	if !ok {
		c.addHeaterLocked(roomID, dto)
		return
	}
	newPos := heaterFromDTO(dto).Pos
	if !h.Pos.Equals(newPos) {
		last := h.Pos
		h.Pos = newPos
		c.publishLocked(PositionChanged{RoomID: roomID, DeviceID: h.ID, Last: last, New: newPos})
	}
	if h.Temperature != dto.Temperature {
		last := h.Temperature
		h.Temperature = dto.Temperature
		c.publishLocked(TemperatureChanged{RoomID: roomID, DeviceID: h.ID, Last: last, New: dto.Temperature})
	}
	if h.On != dto.IsOn {
		last := h.On
		h.On = dto.IsOn
		c.publishLocked(EnableChanged{RoomID: roomID, HeaterID: h.ID, Last: last, New: dto.IsOn})
	}
}

// removeRoomLocked drops a mirror if present. The removal event fires either
// way so external subscribers always observe it.
func (c *Cache) removeRoomLocked(roomID uuid.UUID) {
	delete(c.rooms, roomID)
	c.publishLocked(RoomRemoved{RoomID: roomID})
}

func (c *Cache) removeHeaterLocked(roomID, heaterID uuid.UUID) {
	if r, ok := c.rooms[roomID]; ok {
		delete(r.Heaters, heaterID)
	}
	c.publishLocked(HeaterRemoved{RoomID: roomID, HeaterID: heaterID})
}

func (c *Cache) removeSensorLocked(roomID, sensorID uuid.UUID) {
	if r, ok := c.rooms[roomID]; ok {
		delete(r.Sensors, sensorID)
	}
	c.publishLocked(SensorRemoved{RoomID: roomID, SensorID: sensorID})
}

// applyFeedLocked updates only the referenced sensor's temperature. A feed
// implies nothing about what exists locally: unresolved room or sensor means
// the message is ignored.
func (c *Cache) applyFeedLocked(feed *protocol.TemperatureFeed) {
	r, ok := c.rooms[feed.RoomID]
	if !ok {
		return
	}
	s, ok := r.Sensors[feed.SensorID]
	if !ok {
		return
	}
	if s.Temperature == feed.Temperature {
		return
	}
	last := s.Temperature
	s.Temperature = feed.Temperature
	c.publishLocked(TemperatureChanged{RoomID: feed.RoomID, DeviceID: s.ID, Last: last, New: feed.Temperature})
}
