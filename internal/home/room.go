package home

import (
	"sync"

	"github.com/google/uuid"

	"HeatGrid/internal/sim"
)

// Room is a bounded rectangular space containing heaters and sensors. Width
// and height are fixed at creation. All device state is guarded by Mu;
// event handlers run synchronously while Mu is held and must not re-enter
// the room.
type Room struct {
	ID     uuid.UUID
	Name   string
	Width  float64
	Height float64

	Heaters map[uuid.UUID]*Heater
	Sensors map[uuid.UUID]*HeatSensor

	// Ambient is the room-wide temperature the simulation decays toward
	// zero and feeds from active heaters.
	Ambient float64

	// DecayK is the decay constant applied by every simulation step.
	DecayK float64

	Mu     sync.Mutex
	events eventSink
}

// RoomState is a deep copy of a room's fields safe to use outside the guard.
type RoomState struct {
	ID             uuid.UUID
	Name           string
	Width          float64
	Height         float64
	Ambient        float64
	AvgTemperature float64
	Heaters        []HeaterState
	Sensors        []SensorState
}

func NewRoom(name string, width, height, decayK float64) (*Room, error) {
	if width <= 0 || height <= 0 {
		return nil, &ValidationError{Field: "size", Reason: "width and height must be positive"}
	}
	return &Room{
		ID:      uuid.New(),
		Name:    name,
		Width:   width,
		Height:  height,
		DecayK:  decayK,
		Heaters: map[uuid.UUID]*Heater{},
		Sensors: map[uuid.UUID]*HeatSensor{},
	}, nil
}

// SubscribeEvents registers a handler on the room's event stream and returns
// the function that releases the subscription. Callers are expected to defer
// the release so it runs on every exit path.
func (r *Room) SubscribeEvents(fn func(Event)) func() {
	r.Mu.Lock()
	id := r.events.subscribe(fn)
	r.Mu.Unlock()
	return func() {
		r.Mu.Lock()
		r.events.unsubscribe(id)
		r.Mu.Unlock()
	}
}

// AddHeater validates the position, mints an id and registers the heater.
func (r *Room) AddHeater(pos Position, temperature float64, on bool) (HeaterState, error) {
	if !pos.inBounds(r.Width, r.Height) {
		return HeaterState{}, errOutOfBounds(r.Width, r.Height)
	}
	h := &Heater{ID: uuid.New(), Pos: pos, Temperature: temperature, On: on}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Heaters[h.ID] = h
	r.events.publish(HeaterAdded{RoomID: r.ID, Heater: h})
	return h.state(), nil
}

// AddSensor validates the position, mints an id and registers the sensor.
func (r *Room) AddSensor(pos Position) (SensorState, error) {
	if !pos.inBounds(r.Width, r.Height) {
		return SensorState{}, errOutOfBounds(r.Width, r.Height)
	}
	s := &HeatSensor{ID: uuid.New(), Pos: pos}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Sensors[s.ID] = s
	r.events.publish(SensorAdded{RoomID: r.ID, Sensor: s})
	return s.state(), nil
}

// RemoveHeater is an idempotent no-op when the id is unknown.
func (r *Room) RemoveHeater(id uuid.UUID) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if _, ok := r.Heaters[id]; !ok {
		return false
	}
	delete(r.Heaters, id)
	r.events.publish(HeaterRemoved{RoomID: r.ID, HeaterID: id})
	return true
}

// RemoveSensor is an idempotent no-op when the id is unknown.
func (r *Room) RemoveSensor(id uuid.UUID) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if _, ok := r.Sensors[id]; !ok {
		return false
	}
	delete(r.Sensors, id)
	r.events.publish(SensorRemoved{RoomID: r.ID, SensorID: id})
	return true
}

func (r *Room) Heater(id uuid.UUID) (HeaterState, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	h, ok := r.Heaters[id]
	if !ok {
		return HeaterState{}, false
	}
	return h.state(), true
}

func (r *Room) Sensor(id uuid.UUID) (SensorState, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	s, ok := r.Sensors[id]
	if !ok {
		return SensorState{}, false
	}
	return s.state(), true
}

// UpdateHeater applies position, target temperature and enable state in one
// guarded mutation, emitting a change event for each field that actually
// changed.
func (r *Room) UpdateHeater(id uuid.UUID, pos Position, temperature float64, on bool) (HeaterState, error) {
	if !pos.inBounds(r.Width, r.Height) {
		return HeaterState{}, errOutOfBounds(r.Width, r.Height)
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	h, ok := r.Heaters[id]
	if !ok {
		return HeaterState{}, &NotFoundError{Kind: "heater", ID: id}
	}
	if !h.Pos.Equals(pos) {
		last := h.Pos
		h.Pos = pos
		r.events.publish(PositionChanged{RoomID: r.ID, DeviceID: id, Last: last, New: pos})
	}
	if h.Temperature != temperature {
		last := h.Temperature
		h.Temperature = temperature
		r.events.publish(HeaterTemperatureChanged{RoomID: r.ID, HeaterID: id, Last: last, New: temperature})
	}
	if h.On != on {
		last := h.On
		h.On = on
		r.events.publish(HeaterEnableChanged{RoomID: r.ID, HeaterID: id, Last: last, New: on})
	}
	return h.state(), nil
}

// SetSensorPosition moves a sensor; the measured reading is untouched.
func (r *Room) SetSensorPosition(id uuid.UUID, pos Position) (SensorState, error) {
	if !pos.inBounds(r.Width, r.Height) {
		return SensorState{}, errOutOfBounds(r.Width, r.Height)
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	s, ok := r.Sensors[id]
	if !ok {
		return SensorState{}, &NotFoundError{Kind: "sensor", ID: id}
	}
	if !s.Pos.Equals(pos) {
		last := s.Pos
		s.Pos = pos
		r.events.publish(PositionChanged{RoomID: r.ID, DeviceID: id, Last: last, New: pos})
	}
	return s.state(), nil
}

// OverrideSensorTemperature forces a sensor reading, for diagnostics. The
// next simulation tick decays it like any other reading.
func (r *Room) OverrideSensorTemperature(id uuid.UUID, temperature float64) (SensorState, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	s, ok := r.Sensors[id]
	if !ok {
		return SensorState{}, &NotFoundError{Kind: "sensor", ID: id}
	}
	r.setSensorTemperatureLocked(s, temperature)
	return s.state(), nil
}

func (r *Room) setSensorTemperatureLocked(s *HeatSensor, temperature float64) {
	if s.Temperature == temperature {
		return
	}
	last := s.Temperature
	s.Temperature = temperature
	r.events.publish(SensorTemperatureChanged{RoomID: r.ID, SensorID: s.ID, Last: last, New: temperature})
}

// Advance runs one thermal step over the whole room. Called by the
// simulation engine once per tick.
func (r *Room) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	sources := r.activeSourcesLocked()
	for _, s := range r.Sensors {
		next := sim.SensorReading(s.Temperature, s.Pos.X, s.Pos.Y, sources, r.DecayK, dt)
		r.setSensorTemperatureLocked(s, next)
	}
	r.Ambient = sim.AmbientStep(r.Ambient, sources, r.DecayK, dt, r.Width, r.Height)
}

// TemperatureAt estimates the temperature at a point in the room.
func (r *Room) TemperatureAt(x, y float64) float64 {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	samples := make([]sim.SensorSample, 0, len(r.Sensors))
	for _, s := range r.Sensors {
		samples = append(samples, sim.SensorSample{X: s.Pos.X, Y: s.Pos.Y, Reading: s.Temperature})
	}
	return sim.TemperatureAt(x, y, r.activeSourcesLocked(), samples, r.Ambient, r.DecayK, r.Width, r.Height)
}

// AvgTemperature is the mean of all sensor readings, zero with no sensors.
func (r *Room) AvgTemperature() float64 {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.AvgTemperatureLocked()
}

func (r *Room) AvgTemperatureLocked() float64 {
	if len(r.Sensors) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range r.Sensors {
		sum += s.Temperature
	}
	return sum / float64(len(r.Sensors))
}

// Snapshot deep-copies the room state for use outside the guard.
func (r *Room) Snapshot() RoomState {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	st := RoomState{
		ID:             r.ID,
		Name:           r.Name,
		Width:          r.Width,
		Height:         r.Height,
		Ambient:        r.Ambient,
		AvgTemperature: r.AvgTemperatureLocked(),
		Heaters:        make([]HeaterState, 0, len(r.Heaters)),
		Sensors:        make([]SensorState, 0, len(r.Sensors)),
	}
	for _, h := range r.Heaters {
		st.Heaters = append(st.Heaters, h.state())
	}
	for _, s := range r.Sensors {
		st.Sensors = append(st.Sensors, s.state())
	}
	return st
}

// dispose releases devices and subscriptions; the caller must have stopped
// the room's engine first.
func (r *Room) dispose() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Heaters = map[uuid.UUID]*Heater{}
	r.Sensors = map[uuid.UUID]*HeatSensor{}
	r.events.handlers = nil
}

func (r *Room) activeSourcesLocked() []sim.HeatSource {
	sources := make([]sim.HeatSource, 0, len(r.Heaters))
	for _, h := range r.Heaters {
		if !h.On {
			continue
		}
		sources = append(sources, sim.HeatSource{X: h.Pos.X, Y: h.Pos.Y, Temp: h.Temperature})
	}
	return sources
}
