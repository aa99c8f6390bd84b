package server

import (
	"HeatGrid/internal/home"
	"HeatGrid/internal/protocol"
)

func positionDTO(p home.Position) protocol.PositionDTO {
	return protocol.PositionDTO{X: p.X, Y: p.Y}
}

func positionFromDTO(d protocol.PositionDTO) home.Position {
	return home.Position{X: d.X, Y: d.Y}
}

func heaterDTO(st home.HeaterState) protocol.HeaterDTO {
	return protocol.HeaterDTO{
		ID:          st.ID,
		Position:    positionDTO(st.Pos),
		Temperature: st.Temperature,
		IsOn:        st.On,
	}
}

func sensorDTO(st home.SensorState) protocol.SensorDTO {
	return protocol.SensorDTO{
		ID:          st.ID,
		Position:    positionDTO(st.Pos),
		Temperature: st.Temperature,
	}
}

func roomDTO(st home.RoomState) protocol.RoomDTO {
	dto := protocol.RoomDTO{
		ID:             st.ID,
		Name:           st.Name,
		Width:          st.Width,
		Height:         st.Height,
		AvgTemperature: st.AvgTemperature,
		Heaters:        make([]protocol.HeaterDTO, 0, len(st.Heaters)),
		Sensors:        make([]protocol.SensorDTO, 0, len(st.Sensors)),
	}
	for _, h := range st.Heaters {
		dto.Heaters = append(dto.Heaters, heaterDTO(h))
	}
	for _, s := range st.Sensors {
		dto.Sensors = append(dto.Sensors, sensorDTO(s))
	}
	return dto
}
