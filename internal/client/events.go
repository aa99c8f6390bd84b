package client

import (
	"github.com/google/uuid"

	"HeatGrid/internal/home"
)

// Event is a change notification fired by the cache as it reconciles
// inbound messages. Handlers run synchronously under the cache guard.
type Event interface {
	isEvent()
}

type RoomAdded struct {
	Room *Room
}

// RoomRemoved fires even when the room was never cached locally, so
// external subscribers always observe the removal.
type RoomRemoved struct {
	RoomID uuid.UUID
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

type PositionChanged struct {
	RoomID   uuid.UUID
	DeviceID uuid.UUID
	Last     home.Position
	New      home.Position
}

type TemperatureChanged struct {
	RoomID   uuid.UUID
	DeviceID uuid.UUID
	Last     float64
	New      float64
}

type EnableChanged struct {
	RoomID   uuid.UUID
	HeaterID uuid.UUID
	Last     bool
	New      bool
}

func (RoomAdded) isEvent()          {}
func (RoomRemoved) isEvent()        {}
func (HeaterAdded) isEvent()        {}
func (HeaterRemoved) isEvent()      {}
func (SensorAdded) isEvent()        {}
func (SensorRemoved) isEvent()      {}
func (PositionChanged) isEvent()    {}
func (TemperatureChanged) isEvent() {}
func (EnableChanged) isEvent()      {}
