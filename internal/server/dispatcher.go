package server

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"HeatGrid/internal/home"
	"HeatGrid/internal/protocol"
)

// Dispatcher routes decoded requests to the registry, answers the sender
// with a unicast result and fans successful mutations out to the other
// peers. Sensor temperature changes go to the room's subscriber subset only;
// every other mutation is a full broadcast.
type Dispatcher struct {
	registry *home.Registry
	conns    *ConnManager
	engines  *engineSet
	log      *zap.Logger
	metrics  *Metrics
}

func NewDispatcher(registry *home.Registry, conns *ConnManager, cfg Config, log *zap.Logger, metrics *Metrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		conns:    conns,
		engines:  newEngineSet(cfg.TickInterval, log, metrics),
		log:      log,
		metrics:  metrics,
	}
}

// Dispatch handles one decoded inbound message from a peer. Non-request
// documents are ignored.
func (d *Dispatcher) Dispatch(peerID uuid.UUID, msg protocol.Message) {
	switch req := msg.(type) {
	case *protocol.GetAllRequest:
		d.handleGetAll(peerID, req)
	case *protocol.GetRoomRequest:
		d.handleGetRoom(peerID, req)
	case *protocol.GetHeaterRequest:
		d.handleGetHeater(peerID, req)
	case *protocol.GetSensorRequest:
		d.handleGetSensor(peerID, req)
	case *protocol.AddRoomRequest:
		d.handleAddRoom(peerID, req)
	case *protocol.AddHeaterRequest:
		d.handleAddHeater(peerID, req)
	case *protocol.AddSensorRequest:
		d.handleAddSensor(peerID, req)
	case *protocol.UpdateHeaterRequest:
		d.handleUpdateHeater(peerID, req)
	case *protocol.UpdateSensorRequest:
		d.handleUpdateSensor(peerID, req)
	case *protocol.RemoveRoomRequest:
		d.handleRemoveRoom(peerID, req)
	case *protocol.RemoveHeaterRequest:
		d.handleRemoveHeater(peerID, req)
	case *protocol.RemoveSensorRequest:
		d.handleRemoveSensor(peerID, req)
	case *protocol.SubscribeRoomTemperatureRequest:
		d.handleSubscribe(peerID, req)
	case *protocol.UnsubscribeRoomTemperatureRequest:
		d.handleUnsubscribe(peerID, req)
	default:
		d.log.Debug("ignoring non-request message", zap.String("type", string(msg.Type())))
	}
}

// Shutdown stops every simulation loop and clears the registry.
func (d *Dispatcher) Shutdown() {
	d.engines.stopAll()
	d.registry.ClearRooms()
	if d.metrics != nil {
		d.metrics.Rooms.Set(0)
	}
}

func (d *Dispatcher) handleGetAll(peerID uuid.UUID, req *protocol.GetAllRequest) {
	rooms := d.registry.Rooms()
	result := &protocol.RoomListResult{Rooms: make([]protocol.RoomDTO, 0, len(rooms))}
	for _, r := range rooms {
		result.Rooms = append(result.Rooms, roomDTO(r.Snapshot()))
	}
	d.respond(peerID, protocol.TypeGetAll, req.Seq, result)
}

func (d *Dispatcher) handleGetRoom(peerID uuid.UUID, req *protocol.GetRoomRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeGetRoom, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeGetRoom, req.Seq, &protocol.RoomResult{Room: roomDTO(room.Snapshot())})
}

func (d *Dispatcher) handleGetHeater(peerID uuid.UUID, req *protocol.GetHeaterRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeGetHeater, req.Seq)
		return
	}
	st, ok := room.Heater(req.HeaterID)
	if !ok {
		d.fail(peerID, protocol.TypeGetHeater, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeGetHeater, req.Seq, &protocol.HeaterResult{RoomID: req.RoomID, Heater: heaterDTO(st)})
}

func (d *Dispatcher) handleGetSensor(peerID uuid.UUID, req *protocol.GetSensorRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeGetSensor, req.Seq)
		return
	}
	st, ok := room.Sensor(req.SensorID)
	if !ok {
		d.fail(peerID, protocol.TypeGetSensor, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeGetSensor, req.Seq, &protocol.SensorResult{RoomID: req.RoomID, Sensor: sensorDTO(st)})
}

func (d *Dispatcher) handleAddRoom(peerID uuid.UUID, req *protocol.AddRoomRequest) {
	room, err := d.registry.AddRoom(req.Name, req.Width, req.Height)
	if err != nil {
		d.failWith(peerID, protocol.TypeAddRoom, req.Seq, err)
		return
	}
	d.attachRoom(room)
	if d.metrics != nil {
		d.metrics.Rooms.Set(float64(d.registry.Len()))
	}
	dto := roomDTO(room.Snapshot())
	d.respond(peerID, protocol.TypeAddRoom, req.Seq, &protocol.RoomResult{Room: dto})
	d.conns.Broadcast(&protocol.RoomAddedBroadcast{Room: dto})
}

func (d *Dispatcher) handleAddHeater(peerID uuid.UUID, req *protocol.AddHeaterRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeAddHeater, req.Seq)
		return
	}
	st, err := room.AddHeater(positionFromDTO(req.Position), req.Temperature, req.IsOn)
	if err != nil {
		d.failWith(peerID, protocol.TypeAddHeater, req.Seq, err)
		return
	}
	dto := heaterDTO(st)
	d.respond(peerID, protocol.TypeAddHeater, req.Seq, &protocol.HeaterResult{RoomID: req.RoomID, Heater: dto})
	d.conns.Broadcast(&protocol.HeaterAddedBroadcast{RoomID: req.RoomID, Heater: dto})
}

func (d *Dispatcher) handleAddSensor(peerID uuid.UUID, req *protocol.AddSensorRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeAddSensor, req.Seq)
		return
	}
	st, err := room.AddSensor(positionFromDTO(req.Position))
	if err != nil {
		d.failWith(peerID, protocol.TypeAddSensor, req.Seq, err)
		return
	}
	dto := sensorDTO(st)
	d.respond(peerID, protocol.TypeAddSensor, req.Seq, &protocol.SensorResult{RoomID: req.RoomID, Sensor: dto})
	d.conns.Broadcast(&protocol.SensorAddedBroadcast{RoomID: req.RoomID, Sensor: dto})
}

func (d *Dispatcher) handleUpdateHeater(peerID uuid.UUID, req *protocol.UpdateHeaterRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeUpdateHeater, req.Seq)
		return
	}
	st, err := room.UpdateHeater(req.HeaterID, positionFromDTO(req.Position), req.Temperature, req.IsOn)
	if err != nil {
		d.failWith(peerID, protocol.TypeUpdateHeater, req.Seq, err)
		return
	}
	dto := heaterDTO(st)
	d.respond(peerID, protocol.TypeUpdateHeater, req.Seq, &protocol.HeaterResult{RoomID: req.RoomID, Heater: dto})
	d.conns.Broadcast(&protocol.HeaterUpdatedBroadcast{RoomID: req.RoomID, Heater: dto})
}

func (d *Dispatcher) handleUpdateSensor(peerID uuid.UUID, req *protocol.UpdateSensorRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok {
		d.fail(peerID, protocol.TypeUpdateSensor, req.Seq)
		return
	}
	st, err := room.SetSensorPosition(req.SensorID, positionFromDTO(req.Position))
	if err != nil {
		d.failWith(peerID, protocol.TypeUpdateSensor, req.Seq, err)
		return
	}
	if req.Temperature != nil {
		st, err = room.OverrideSensorTemperature(req.SensorID, *req.Temperature)
		if err != nil {
			d.failWith(peerID, protocol.TypeUpdateSensor, req.Seq, err)
			return
		}
	}
	d.respond(peerID, protocol.TypeUpdateSensor, req.Seq, &protocol.SensorResult{RoomID: req.RoomID, Sensor: sensorDTO(st)})
	// Sensor updates never broadcast; subscribers get a temperature feed.
	// An override already fed through the room's event stream, so this is
	// idempotent for receivers.
	d.feedSubscribers(req.RoomID, req.SensorID, st.Temperature)
}

func (d *Dispatcher) handleRemoveRoom(peerID uuid.UUID, req *protocol.RemoveRoomRequest) {
	if !d.registry.ContainsRoom(req.RoomID) {
		d.fail(peerID, protocol.TypeRemoveRoom, req.Seq)
		return
	}
	d.engines.stop(req.RoomID)
	d.registry.RemoveRoom(req.RoomID)
	d.conns.DropRoomSubscriptions(req.RoomID)
	if d.metrics != nil {
		d.metrics.Rooms.Set(float64(d.registry.Len()))
		d.metrics.RoomAvgTemperature.DeleteLabelValues(req.RoomID.String())
	}
	d.respond(peerID, protocol.TypeRemoveRoom, req.Seq, &protocol.RoomRemovedResult{RoomID: req.RoomID})
	d.conns.Broadcast(&protocol.RoomRemovedBroadcast{RoomID: req.RoomID})
}

func (d *Dispatcher) handleRemoveHeater(peerID uuid.UUID, req *protocol.RemoveHeaterRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok || !room.RemoveHeater(req.HeaterID) {
		d.fail(peerID, protocol.TypeRemoveHeater, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeRemoveHeater, req.Seq,
		&protocol.HeaterRemovedResult{RoomID: req.RoomID, HeaterID: req.HeaterID})
	d.conns.Broadcast(&protocol.HeaterRemovedBroadcast{RoomID: req.RoomID, HeaterID: req.HeaterID})
}

func (d *Dispatcher) handleRemoveSensor(peerID uuid.UUID, req *protocol.RemoveSensorRequest) {
	room, ok := d.registry.GetRoom(req.RoomID)
	if !ok || !room.RemoveSensor(req.SensorID) {
		d.fail(peerID, protocol.TypeRemoveSensor, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeRemoveSensor, req.Seq,
		&protocol.SensorRemovedResult{RoomID: req.RoomID, SensorID: req.SensorID})
	d.conns.Broadcast(&protocol.SensorRemovedBroadcast{RoomID: req.RoomID, SensorID: req.SensorID})
}

func (d *Dispatcher) handleSubscribe(peerID uuid.UUID, req *protocol.SubscribeRoomTemperatureRequest) {
	if !d.registry.ContainsRoom(req.RoomID) || !d.conns.Subscribe(req.RoomID, peerID) {
		d.fail(peerID, protocol.TypeSubscribeRoomTemperature, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeSubscribeRoomTemperature, req.Seq, &protocol.SubscriptionResult{RoomID: req.RoomID})
}

func (d *Dispatcher) handleUnsubscribe(peerID uuid.UUID, req *protocol.UnsubscribeRoomTemperatureRequest) {
	if !d.registry.ContainsRoom(req.RoomID) || !d.conns.Unsubscribe(req.RoomID, peerID) {
		d.fail(peerID, protocol.TypeUnsubscribeRoomTemperature, req.Seq)
		return
	}
	d.respond(peerID, protocol.TypeUnsubscribeRoomTemperature, req.Seq, &protocol.SubscriptionResult{RoomID: req.RoomID})
}

// attachRoom starts the room's simulation loop and hooks its event stream so
// sensor temperature changes reach the room's feed subscribers. The hook runs
// under the room guard and must not call back into the room.
func (d *Dispatcher) attachRoom(room *home.Room) {
	detach := room.SubscribeEvents(func(ev home.Event) {
		tc, ok := ev.(home.SensorTemperatureChanged)
		if !ok {
			return
		}
		d.feedSubscribers(tc.RoomID, tc.SensorID, tc.New)
		if d.metrics != nil {
			d.metrics.RoomAvgTemperature.WithLabelValues(tc.RoomID.String()).Set(room.AvgTemperatureLocked())
		}
	})
	d.engines.start(room, detach)
}

func (d *Dispatcher) feedSubscribers(roomID, sensorID uuid.UUID, temperature float64) {
	subs := d.conns.Subscribers(roomID)
	if len(subs) == 0 {
		return
	}
	d.conns.SendToSubset(subs, &protocol.TemperatureFeed{
		RoomID:      roomID,
		SensorID:    sensorID,
		Temperature: temperature,
	})
}

func (d *Dispatcher) respond(peerID uuid.UUID, verb protocol.MsgType, seq uint64, result protocol.Result) {
	if d.metrics != nil {
		d.metrics.Requests.WithLabelValues(string(verb), "ok").Inc()
	}
	d.conns.SendToOne(peerID, &protocol.Response{Verb: verb, Seq: seq, Success: true, Result: result})
}

func (d *Dispatcher) fail(peerID uuid.UUID, verb protocol.MsgType, seq uint64) {
	if d.metrics != nil {
		d.metrics.Requests.WithLabelValues(string(verb), "failed").Inc()
	}
	d.conns.SendToOne(peerID, &protocol.Response{Verb: verb, Seq: seq, Success: false})
}

func (d *Dispatcher) failWith(peerID uuid.UUID, verb protocol.MsgType, seq uint64, err error) {
	var vErr *home.ValidationError
	var nfErr *home.NotFoundError
	switch {
	case errors.As(err, &vErr):
		d.log.Debug("request rejected", zap.String("verb", string(verb)), zap.Error(err))
	case errors.As(err, &nfErr):
		d.log.Debug("request target missing", zap.String("verb", string(verb)), zap.Error(err))
	default:
		d.log.Warn("request failed", zap.String("verb", string(verb)), zap.Error(err))
	}
	d.fail(peerID, verb, seq)
}
