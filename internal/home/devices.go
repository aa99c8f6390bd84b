package home

import "github.com/google/uuid"

// Heater is a device with a settable target temperature and on/off state.
// While off it contributes nothing to the room. Fields are guarded by the
// owning room's mutex.
type Heater struct {
	ID          uuid.UUID
	Pos         Position
	Temperature float64
	On          bool
}

// HeatSensor reports a measured temperature derived from decay and nearby
// active heaters. The reading is owned by the simulation; clients cannot set
// it directly. Fields are guarded by the owning room's mutex.
type HeatSensor struct {
	ID          uuid.UUID
	Pos         Position
	Temperature float64
}

// HeaterState is a copy of a heater's fields safe to use outside the room
// guard.
type HeaterState struct {
	ID          uuid.UUID
	Pos         Position
	Temperature float64
	On          bool
}

// SensorState is a copy of a sensor's fields safe to use outside the room
// guard.
type SensorState struct {
	ID          uuid.UUID
	Pos         Position
	Temperature float64
}

func (h *Heater) state() HeaterState {
	return HeaterState{ID: h.ID, Pos: h.Pos, Temperature: h.Temperature, On: h.On}
}

func (s *HeatSensor) state() SensorState {
	return SensorState{ID: s.ID, Pos: s.Pos, Temperature: s.Temperature}
}
