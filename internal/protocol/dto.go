package protocol

import "github.com/google/uuid"

// Wire DTOs. These are the only shapes that cross the connection; domain
// types never do.

type PositionDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type HeaterDTO struct {
	ID          uuid.UUID   `json:"id"`
	Position    PositionDTO `json:"position"`
	Temperature float64     `json:"temperature"`
	IsOn        bool        `json:"is_on"`
}

type SensorDTO struct {
	ID          uuid.UUID   `json:"id"`
	Position    PositionDTO `json:"position"`
	Temperature float64     `json:"temperature"`
}

type RoomDTO struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Width          float64     `json:"width"`
	Height         float64     `json:"height"`
	AvgTemperature float64     `json:"avg_temperature"`
	Heaters        []HeaterDTO `json:"heaters"`
	Sensors        []SensorDTO `json:"sensors"`
}
