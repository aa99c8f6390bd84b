package protocol

import "github.com/google/uuid"

// Kind is the document root discriminator: what role a frame plays.
type Kind string

const (
	// KindRequest is a client-to-server verb.
	KindRequest Kind = "request"
	// KindClient is a per-request unicast result.
	KindClient Kind = "client"
	// KindBroadcast is an unsolicited fan-out of a state change.
	KindBroadcast Kind = "broadcast"
	// KindFeed is an unsolicited temperature push to a room's subscribers.
	KindFeed Kind = "feed"
)

// MsgType selects the concrete payload within a kind. Receivers match by
// verb+entity; there is no correlation id beyond the optional seq token.
type MsgType string

const (
	TypeGetAll    MsgType = "get_all"
	TypeGetRoom   MsgType = "get_room"
	TypeGetHeater MsgType = "get_heater"
	TypeGetSensor MsgType = "get_heat_sensor"

	TypeAddRoom   MsgType = "add_room"
	TypeAddHeater MsgType = "add_heater"
	TypeAddSensor MsgType = "add_heat_sensor"

	TypeUpdateHeater MsgType = "update_heater"
	TypeUpdateSensor MsgType = "update_heat_sensor"

	TypeRemoveRoom   MsgType = "remove_room"
	TypeRemoveHeater MsgType = "remove_heater"
	TypeRemoveSensor MsgType = "remove_heat_sensor"

	TypeSubscribeRoomTemperature   MsgType = "subscribe_room_temperature"
	TypeUnsubscribeRoomTemperature MsgType = "unsubscribe_room_temperature"

	TypeRoomTemperature MsgType = "room_temperature"
)

// Message is any decoded wire document.
type Message interface {
	Kind() Kind
	Type() MsgType
}

/* ------------------------------ Requests ----------------------------- */

// Seq is an optional correlation token echoed on unicast responses. Matching
// stays verb+entity; the token only lets a client with two same-verb requests
// in flight tell the answers apart.

type GetAllRequest struct {
	Seq uint64 `json:"-"`
}

type GetRoomRequest struct {
	Seq    uint64    `json:"-"`
	RoomID uuid.UUID `json:"room_id"`
}

type GetHeaterRequest struct {
	Seq      uint64    `json:"-"`
	RoomID   uuid.UUID `json:"room_id"`
	HeaterID uuid.UUID `json:"heater_id"`
}

type GetSensorRequest struct {
	Seq      uint64    `json:"-"`
	RoomID   uuid.UUID `json:"room_id"`
	SensorID uuid.UUID `json:"sensor_id"`
}

type AddRoomRequest struct {
	Seq    uint64  `json:"-"`
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type AddHeaterRequest struct {
	Seq         uint64      `json:"-"`
	RoomID      uuid.UUID   `json:"room_id"`
	Position    PositionDTO `json:"position"`
	Temperature float64     `json:"temperature"`
	IsOn        bool        `json:"is_on"`
}

type AddSensorRequest struct {
	Seq      uint64      `json:"-"`
	RoomID   uuid.UUID   `json:"room_id"`
	Position PositionDTO `json:"position"`
}

type UpdateHeaterRequest struct {
	Seq         uint64      `json:"-"`
	RoomID      uuid.UUID   `json:"room_id"`
	HeaterID    uuid.UUID   `json:"heater_id"`
	Position    PositionDTO `json:"position"`
	Temperature float64     `json:"temperature"`
	IsOn        bool        `json:"is_on"`
}

// UpdateSensorRequest moves a sensor. The measured reading is owned by the
// simulation; Temperature, when set, is a diagnostics override.
type UpdateSensorRequest struct {
	Seq         uint64      `json:"-"`
	RoomID      uuid.UUID   `json:"room_id"`
	SensorID    uuid.UUID   `json:"sensor_id"`
	Position    PositionDTO `json:"position"`
	Temperature *float64    `json:"temperature,omitempty"`
}

type RemoveRoomRequest struct {
	Seq    uint64    `json:"-"`
	RoomID uuid.UUID `json:"room_id"`
}

type RemoveHeaterRequest struct {
	Seq      uint64    `json:"-"`
	RoomID   uuid.UUID `json:"room_id"`
	HeaterID uuid.UUID `json:"heater_id"`
}

type RemoveSensorRequest struct {
	Seq      uint64    `json:"-"`
	RoomID   uuid.UUID `json:"room_id"`
	SensorID uuid.UUID `json:"sensor_id"`
}

type SubscribeRoomTemperatureRequest struct {
	Seq    uint64    `json:"-"`
	RoomID uuid.UUID `json:"room_id"`
}

type UnsubscribeRoomTemperatureRequest struct {
	Seq    uint64    `json:"-"`
	RoomID uuid.UUID `json:"room_id"`
}

func (*GetAllRequest) Kind() Kind                     { return KindRequest }
func (*GetRoomRequest) Kind() Kind                    { return KindRequest }
func (*GetHeaterRequest) Kind() Kind                  { return KindRequest }
func (*GetSensorRequest) Kind() Kind                  { return KindRequest }
func (*AddRoomRequest) Kind() Kind                    { return KindRequest }
func (*AddHeaterRequest) Kind() Kind                  { return KindRequest }
func (*AddSensorRequest) Kind() Kind                  { return KindRequest }
func (*UpdateHeaterRequest) Kind() Kind               { return KindRequest }
func (*UpdateSensorRequest) Kind() Kind               { return KindRequest }
func (*RemoveRoomRequest) Kind() Kind                 { return KindRequest }
func (*RemoveHeaterRequest) Kind() Kind               { return KindRequest }
func (*RemoveSensorRequest) Kind() Kind               { return KindRequest }
func (*SubscribeRoomTemperatureRequest) Kind() Kind   { return KindRequest }
func (*UnsubscribeRoomTemperatureRequest) Kind() Kind { return KindRequest }

func (*GetAllRequest) Type() MsgType                     { return TypeGetAll }
func (*GetRoomRequest) Type() MsgType                    { return TypeGetRoom }
func (*GetHeaterRequest) Type() MsgType                  { return TypeGetHeater }
func (*GetSensorRequest) Type() MsgType                  { return TypeGetSensor }
func (*AddRoomRequest) Type() MsgType                    { return TypeAddRoom }
func (*AddHeaterRequest) Type() MsgType                  { return TypeAddHeater }
func (*AddSensorRequest) Type() MsgType                  { return TypeAddSensor }
func (*UpdateHeaterRequest) Type() MsgType               { return TypeUpdateHeater }
func (*UpdateSensorRequest) Type() MsgType               { return TypeUpdateSensor }
func (*RemoveRoomRequest) Type() MsgType                 { return TypeRemoveRoom }
func (*RemoveHeaterRequest) Type() MsgType               { return TypeRemoveHeater }
func (*RemoveSensorRequest) Type() MsgType               { return TypeRemoveSensor }
func (*SubscribeRoomTemperatureRequest) Type() MsgType   { return TypeSubscribeRoomTemperature }
func (*UnsubscribeRoomTemperatureRequest) Type() MsgType { return TypeUnsubscribeRoomTemperature }

/* ------------------------- Unicast responses ------------------------- */

// Result is the optional payload of a successful unicast response.
type Result interface {
	isResult()
}

type RoomListResult struct {
	Rooms []RoomDTO `json:"rooms"`
}

type RoomResult struct {
	Room RoomDTO `json:"room"`
}

type HeaterResult struct {
	RoomID uuid.UUID `json:"room_id"`
	Heater HeaterDTO `json:"heater"`
}

type SensorResult struct {
	RoomID uuid.UUID `json:"room_id"`
	Sensor SensorDTO `json:"sensor"`
}

// RoomRemovedResult carries remove-specific fields only; it deliberately
// shares nothing with the add-room shapes.
type RoomRemovedResult struct {
	RoomID uuid.UUID `json:"room_id"`
}

type HeaterRemovedResult struct {
	RoomID   uuid.UUID `json:"room_id"`
	HeaterID uuid.UUID `json:"heater_id"`
}

type SensorRemovedResult struct {
	RoomID   uuid.UUID `json:"room_id"`
	SensorID uuid.UUID `json:"sensor_id"`
}

type SubscriptionResult struct {
	RoomID uuid.UUID `json:"room_id"`
}

func (*RoomListResult) isResult()      {}
func (*RoomResult) isResult()          {}
func (*HeaterResult) isResult()        {}
func (*SensorResult) isResult()        {}
func (*RoomRemovedResult) isResult()   {}
func (*HeaterRemovedResult) isResult() {}
func (*SensorRemovedResult) isResult() {}
func (*SubscriptionResult) isResult()  {}

// Response is the unicast answer to one request. Verb echoes the request's
// discriminator; Result is nil when Success is false.
type Response struct {
	Verb    MsgType
	Seq     uint64
	Success bool
	Result  Result
}

func (*Response) Kind() Kind      { return KindClient }
func (r *Response) Type() MsgType { return r.Verb }

/* ----------------------------- Broadcasts ---------------------------- */

type RoomAddedBroadcast struct {
	Room RoomDTO `json:"room"`
}

type HeaterAddedBroadcast struct {
	RoomID uuid.UUID `json:"room_id"`
	Heater HeaterDTO `json:"heater"`
}

type SensorAddedBroadcast struct {
	RoomID uuid.UUID `json:"room_id"`
	Sensor SensorDTO `json:"sensor"`
}

type HeaterUpdatedBroadcast struct {
	RoomID uuid.UUID `json:"room_id"`
	Heater HeaterDTO `json:"heater"`
}

type RoomRemovedBroadcast struct {
	RoomID uuid.UUID `json:"room_id"`
}

type HeaterRemovedBroadcast struct {
	RoomID   uuid.UUID `json:"room_id"`
	HeaterID uuid.UUID `json:"heater_id"`
}

type SensorRemovedBroadcast struct {
	RoomID   uuid.UUID `json:"room_id"`
	SensorID uuid.UUID `json:"sensor_id"`
}

func (*RoomAddedBroadcast) Kind() Kind     { return KindBroadcast }
func (*HeaterAddedBroadcast) Kind() Kind   { return KindBroadcast }
func (*SensorAddedBroadcast) Kind() Kind   { return KindBroadcast }
func (*HeaterUpdatedBroadcast) Kind() Kind { return KindBroadcast }
func (*RoomRemovedBroadcast) Kind() Kind   { return KindBroadcast }
func (*HeaterRemovedBroadcast) Kind() Kind { return KindBroadcast }
func (*SensorRemovedBroadcast) Kind() Kind { return KindBroadcast }

func (*RoomAddedBroadcast) Type() MsgType     { return TypeAddRoom }
func (*HeaterAddedBroadcast) Type() MsgType   { return TypeAddHeater }
func (*SensorAddedBroadcast) Type() MsgType   { return TypeAddSensor }
func (*HeaterUpdatedBroadcast) Type() MsgType { return TypeUpdateHeater }
func (*RoomRemovedBroadcast) Type() MsgType   { return TypeRemoveRoom }
func (*HeaterRemovedBroadcast) Type() MsgType { return TypeRemoveHeater }
func (*SensorRemovedBroadcast) Type() MsgType { return TypeRemoveSensor }

/* -------------------------------- Feed ------------------------------- */

// TemperatureFeed is the temperature-only push delivered to a room's
// subscriber subset. It implies nothing about what the receiver has cached.
type TemperatureFeed struct {
	RoomID      uuid.UUID `json:"room_id"`
	SensorID    uuid.UUID `json:"sensor_id"`
	Temperature float64   `json:"temperature"`
}

func (*TemperatureFeed) Kind() Kind    { return KindFeed }
func (*TemperatureFeed) Type() MsgType { return TypeRoomTemperature }
