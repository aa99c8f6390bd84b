package home

import "github.com/google/uuid"

// Event is a domain event published into a room's event stream. Devices never
// re-emit through room subscriptions; every change flows through the one
// directional stream owned by the room aggregate. Handlers run synchronously
// while the room guard is held and must not call back into the same room.
type Event interface {
	isEvent()
}

type HeaterAdded struct {
	RoomID uuid.UUID
	Heater *Heater
}

type HeaterRemoved struct {
	RoomID   uuid.UUID
	HeaterID uuid.UUID
}

type SensorAdded struct {
	RoomID uuid.UUID
	Sensor *HeatSensor
}

type SensorRemoved struct {
	RoomID   uuid.UUID
	SensorID uuid.UUID
}

// PositionChanged carries the last and new value of a device move.
type PositionChanged struct {
	RoomID   uuid.UUID
	DeviceID uuid.UUID
	Last     Position
	New      Position
}

// HeaterTemperatureChanged reports a change of a heater's target temperature.
type HeaterTemperatureChanged struct {
	RoomID   uuid.UUID
	HeaterID uuid.UUID
	Last     float64
	New      float64
}

// SensorTemperatureChanged reports a change of a sensor's measured reading,
// whether from a simulation tick or an explicit override.
type SensorTemperatureChanged struct {
	RoomID   uuid.UUID
	SensorID uuid.UUID
	Last     float64
	New      float64
}

type HeaterEnableChanged struct {
	RoomID   uuid.UUID
	HeaterID uuid.UUID
	Last     bool
	New      bool
}

func (HeaterAdded) isEvent()              {}
func (HeaterRemoved) isEvent()            {}
func (SensorAdded) isEvent()              {}
func (SensorRemoved) isEvent()            {}
func (PositionChanged) isEvent()          {}
func (HeaterTemperatureChanged) isEvent() {}
func (SensorTemperatureChanged) isEvent() {}
func (HeaterEnableChanged) isEvent()      {}

// eventSink fans one room's events out to its subscribers. Guarded by the
// owning room's mutex.
type eventSink struct {
	next     int
	handlers map[int]func(Event)
}

func (s *eventSink) subscribe(fn func(Event)) int {
	if s.handlers == nil {
		s.handlers = map[int]func(Event){}
	}
	id := s.next
	s.next++
	s.handlers[id] = fn
	return id
}

func (s *eventSink) unsubscribe(id int) {
	delete(s.handlers, id)
}

func (s *eventSink) publish(ev Event) {
	for _, fn := range s.handlers {
		fn(ev)
	}
}
