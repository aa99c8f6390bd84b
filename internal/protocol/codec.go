package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeError reports a malformed inbound frame. Receivers drop the frame;
// they do not answer and do not disconnect.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// envelope is the self-describing document every frame carries. Kind selects
// the document root, Type the concrete payload within it.
type envelope struct {
	Kind    Kind            `json:"kind"`
	Type    MsgType         `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode marshals a message into one wire frame.
func Encode(m Message) ([]byte, error) {
	env := envelope{Kind: m.Kind(), Type: m.Type()}

	var payload any
	switch v := m.(type) {
	case *GetAllRequest:
		env.Seq = v.Seq
	case *GetRoomRequest:
		env.Seq, payload = v.Seq, v
	case *GetHeaterRequest:
		env.Seq, payload = v.Seq, v
	case *GetSensorRequest:
		env.Seq, payload = v.Seq, v
	case *AddRoomRequest:
		env.Seq, payload = v.Seq, v
	case *AddHeaterRequest:
		env.Seq, payload = v.Seq, v
	case *AddSensorRequest:
		env.Seq, payload = v.Seq, v
	case *UpdateHeaterRequest:
		env.Seq, payload = v.Seq, v
	case *UpdateSensorRequest:
		env.Seq, payload = v.Seq, v
	case *RemoveRoomRequest:
		env.Seq, payload = v.Seq, v
	case *RemoveHeaterRequest:
		env.Seq, payload = v.Seq, v
	case *RemoveSensorRequest:
		env.Seq, payload = v.Seq, v
	case *SubscribeRoomTemperatureRequest:
		env.Seq, payload = v.Seq, v
	case *UnsubscribeRoomTemperatureRequest:
		env.Seq, payload = v.Seq, v
	case *Response:
		env.Seq = v.Seq
		success := v.Success
		env.Success = &success
		if v.Success && v.Result != nil {
			payload = v.Result
		}
	case *RoomAddedBroadcast, *HeaterAddedBroadcast, *SensorAddedBroadcast,
		*HeaterUpdatedBroadcast, *RoomRemovedBroadcast, *HeaterRemovedBroadcast,
		*SensorRemovedBroadcast, *TemperatureFeed:
		payload = v
	default:
		return nil, fmt.Errorf("encode: unknown message type %T", m)
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Decode parses one wire frame into its typed message.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: "malformed envelope", Err: err}
	}
	switch env.Kind {
	case KindRequest:
		return decodeRequest(env)
	case KindClient:
		return decodeResponse(env)
	case KindBroadcast:
		return decodeBroadcast(env)
	case KindFeed:
		return decodeFeed(env)
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown kind %q", env.Kind)}
	}
}

func decodeRequest(env envelope) (Message, error) {
	var msg Message
	switch env.Type {
	case TypeGetAll:
		msg = &GetAllRequest{Seq: env.Seq}
	case TypeGetRoom:
		msg = &GetRoomRequest{Seq: env.Seq}
	case TypeGetHeater:
		msg = &GetHeaterRequest{Seq: env.Seq}
	case TypeGetSensor:
		msg = &GetSensorRequest{Seq: env.Seq}
	case TypeAddRoom:
		msg = &AddRoomRequest{Seq: env.Seq}
	case TypeAddHeater:
		msg = &AddHeaterRequest{Seq: env.Seq}
	case TypeAddSensor:
		msg = &AddSensorRequest{Seq: env.Seq}
	case TypeUpdateHeater:
		msg = &UpdateHeaterRequest{Seq: env.Seq}
	case TypeUpdateSensor:
		msg = &UpdateSensorRequest{Seq: env.Seq}
	case TypeRemoveRoom:
		msg = &RemoveRoomRequest{Seq: env.Seq}
	case TypeRemoveHeater:
		msg = &RemoveHeaterRequest{Seq: env.Seq}
	case TypeRemoveSensor:
		msg = &RemoveSensorRequest{Seq: env.Seq}
	case TypeSubscribeRoomTemperature:
		msg = &SubscribeRoomTemperatureRequest{Seq: env.Seq}
	case TypeUnsubscribeRoomTemperature:
		msg = &UnsubscribeRoomTemperatureRequest{Seq: env.Seq}
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown request type %q", env.Type)}
	}
	if err := unmarshalPayload(env.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeResponse(env envelope) (Message, error) {
	resp := &Response{Verb: env.Type, Seq: env.Seq}
	if env.Success != nil {
		resp.Success = *env.Success
	}
	if !resp.Success || len(env.Payload) == 0 {
		if !validResponseVerb(env.Type) {
			return nil, &DecodeError{Reason: fmt.Sprintf("unknown response type %q", env.Type)}
		}
		return resp, nil
	}

	var result Result
	switch env.Type {
	case TypeGetAll:
		result = &RoomListResult{}
	case TypeGetRoom, TypeAddRoom:
		result = &RoomResult{}
	case TypeGetHeater, TypeAddHeater, TypeUpdateHeater:
		result = &HeaterResult{}
	case TypeGetSensor, TypeAddSensor, TypeUpdateSensor:
		result = &SensorResult{}
	case TypeRemoveRoom:
		result = &RoomRemovedResult{}
	case TypeRemoveHeater:
		result = &HeaterRemovedResult{}
	case TypeRemoveSensor:
		result = &SensorRemovedResult{}
	case TypeSubscribeRoomTemperature, TypeUnsubscribeRoomTemperature:
		result = &SubscriptionResult{}
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown response type %q", env.Type)}
	}
	if err := unmarshalPayload(env.Payload, result); err != nil {
		return nil, err
	}
	resp.Result = result
	return resp, nil
}

func decodeBroadcast(env envelope) (Message, error) {
	var msg Message
	switch env.Type {
	case TypeAddRoom:
		msg = &RoomAddedBroadcast{}
	case TypeAddHeater:
		msg = &HeaterAddedBroadcast{}
	case TypeAddSensor:
		msg = &SensorAddedBroadcast{}
	case TypeUpdateHeater:
		msg = &HeaterUpdatedBroadcast{}
	case TypeRemoveRoom:
		msg = &RoomRemovedBroadcast{}
	case TypeRemoveHeater:
		msg = &HeaterRemovedBroadcast{}
	case TypeRemoveSensor:
		msg = &SensorRemovedBroadcast{}
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown broadcast type %q", env.Type)}
	}
	if err := unmarshalPayload(env.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeFeed(env envelope) (Message, error) {
	if env.Type != TypeRoomTemperature {
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown feed type %q", env.Type)}
	}
	feed := &TemperatureFeed{}
	if err := unmarshalPayload(env.Payload, feed); err != nil {
		return nil, err
	}
	return feed, nil
}

func unmarshalPayload(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return &DecodeError{Reason: "malformed payload", Err: err}
	}
	return nil
}

func validResponseVerb(t MsgType) bool {
	switch t {
	case TypeGetAll, TypeGetRoom, TypeGetHeater, TypeGetSensor,
		TypeAddRoom, TypeAddHeater, TypeAddSensor,
		TypeUpdateHeater, TypeUpdateSensor,
		TypeRemoveRoom, TypeRemoveHeater, TypeRemoveSensor,
		TypeSubscribeRoomTemperature, TypeUnsubscribeRoomTemperature:
		return true
	}
	return false
}
