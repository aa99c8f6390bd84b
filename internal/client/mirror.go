package client

import (
	"github.com/google/uuid"

	"HeatGrid/internal/home"
	"HeatGrid/internal/protocol"
)

// Mirror entities. The cache owns independent, non-authoritative copies of
// the server's rooms, keyed by the same ids. They are created and destroyed
// purely in reaction to inbound messages and are guarded by the cache-wide
// mutex; presentation layers read them inside event handlers and do their
// own thread marshaling.

type Heater struct {
	ID          uuid.UUID
	Pos         home.Position
	Temperature float64
	On          bool
}

type HeatSensor struct {
	ID          uuid.UUID
	Pos         home.Position
	Temperature float64
}

type Room struct {
	ID      uuid.UUID
	Name    string
	Width   float64
	Height  float64
	Heaters map[uuid.UUID]*Heater
	Sensors map[uuid.UUID]*HeatSensor
}

// AvgTemperature is the mean of the mirrored sensor readings, zero with no
// sensors.
func (r *Room) AvgTemperature() float64 {
	if len(r.Sensors) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.Sensors {
		sum += s.Temperature
	}
	return sum / float64(len(r.Sensors))
}

func roomFromDTO(dto protocol.RoomDTO) *Room {
	r := &Room{
		ID:      dto.ID,
		Name:    dto.Name,
		Width:   dto.Width,
		Height:  dto.Height,
		Heaters: map[uuid.UUID]*Heater{},
		Sensors: map[uuid.UUID]*HeatSensor{},
	}
	for _, h := range dto.Heaters {
		r.Heaters[h.ID] = heaterFromDTO(h)
	}
	for _, s := range dto.Sensors {
		r.Sensors[s.ID] = sensorFromDTO(s)
	}
	return r
}

func heaterFromDTO(dto protocol.HeaterDTO) *Heater {
	return &Heater{
		ID:          dto.ID,
		Pos:         home.Position{X: dto.Position.X, Y: dto.Position.Y},
		Temperature: dto.Temperature,
		On:          dto.IsOn,
	}
}

func sensorFromDTO(dto protocol.SensorDTO) *HeatSensor {
	return &HeatSensor{
		ID:          dto.ID,
		Pos:         home.Position{X: dto.Position.X, Y: dto.Position.Y},
		Temperature: dto.Temperature,
	}
}
