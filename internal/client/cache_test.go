package client

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeatGrid/internal/protocol"
)

func roomDoc(name string) protocol.RoomDTO {
	return protocol.RoomDTO{ID: uuid.New(), Name: name, Width: 10, Height: 10}
}

func heaterDoc(temp float64, on bool) protocol.HeaterDTO {
	return protocol.HeaterDTO{ID: uuid.New(), Position: protocol.PositionDTO{X: 1, Y: 1}, Temperature: temp, IsOn: on}
}

func sensorDoc() protocol.SensorDTO {
	return protocol.SensorDTO{ID: uuid.New(), Position: protocol.PositionDTO{X: 2, Y: 2}}
}

func recordEvents(c *Cache) *[]Event {
	events := &[]Event{}
	c.OnEvent(func(ev Event) { *events = append(*events, ev) })
	return events
}

func TestGetAllReplacesTheWholeMirror(t *testing.T) {
	c := NewCache(nil)
	stale := roomDoc("stale")
	c.Apply(&protocol.RoomAddedBroadcast{Room: stale})
	require.Len(t, c.Rooms(), 1)

	events := recordEvents(c)
	fresh := roomDoc("fresh")
	fresh.Heaters = []protocol.HeaterDTO{heaterDoc(40, true)}
	c.Apply(&protocol.Response{
		Verb:    protocol.TypeGetAll,
		Success: true,
		Result:  &protocol.RoomListResult{Rooms: []protocol.RoomDTO{fresh}},
	})

	rooms := c.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, fresh.ID, rooms[0].ID, "a full snapshot replaces, never merges")

	// Teardown of the stale mirror then rebuild: removal, room add, nested
	// heater add.
	require.Len(t, *events, 3)
	assert.Equal(t, RoomRemoved{RoomID: stale.ID}, (*events)[0])
	added, ok := (*events)[1].(RoomAdded)
	require.True(t, ok)
	assert.Equal(t, fresh.ID, added.Room.ID)
	_, ok = (*events)[2].(HeaterAdded)
	assert.True(t, ok)
}

func TestAddRoomTwiceIsDeduplicated(t *testing.T) {
	c := NewCache(nil)
	dto := roomDoc("twice")

	c.Apply(&protocol.RoomAddedBroadcast{Room: dto})
	events := recordEvents(c)
	c.Apply(&protocol.RoomAddedBroadcast{Room: dto})

	assert.Len(t, c.Rooms(), 1)
	assert.Empty(t, *events, "a duplicate add fires nothing")
}

func TestOrphanDeviceAddsAreDropped(t *testing.T) {
	c := NewCache(nil)
	events := recordEvents(c)

	c.Apply(&protocol.HeaterAddedBroadcast{RoomID: uuid.New(), Heater: heaterDoc(40, false)})
	c.Apply(&protocol.SensorAddedBroadcast{RoomID: uuid.New(), Sensor: sensorDoc()})

	assert.Empty(t, c.Rooms())
	assert.Empty(t, *events, "device adds without a cached parent room are dropped")
}

func TestHeaterUpdateReconcilesInPlace(t *testing.T) {
	c := NewCache(nil)
	room := roomDoc("den")
	heater := heaterDoc(40, false)
	c.Apply(&protocol.RoomAddedBroadcast{Room: room})
	c.Apply(&protocol.HeaterAddedBroadcast{RoomID: room.ID, Heater: heater})

	mirrorBefore, ok := c.GetHeater(room.ID, heater.ID)
	require.True(t, ok)

	events := recordEvents(c)
	updated := heater
	updated.Position = protocol.PositionDTO{X: 5, Y: 5}
	updated.Temperature = 62
	updated.IsOn = true
	c.Apply(&protocol.HeaterUpdatedBroadcast{RoomID: room.ID, Heater: updated})

	mirrorAfter, ok := c.GetHeater(room.ID, heater.ID)
	require.True(t, ok)
	assert.Same(t, mirrorBefore, mirrorAfter, "updates keep the mirror's identity")
	assert.Equal(t, 62.0, mirrorAfter.Temperature)
	assert.True(t, mirrorAfter.On)

	require.Len(t, *events, 3)
	_, ok = (*events)[0].(PositionChanged)
	assert.True(t, ok)
	tc, ok := (*events)[1].(TemperatureChanged)
	require.True(t, ok)
	assert.Equal(t, 40.0, tc.Last)
	assert.Equal(t, 62.0, tc.New)
	_, ok = (*events)[2].(EnableChanged)
	assert.True(t, ok)
}

func TestUnknownHeaterUpdateSelfHealsIntoAdd(t *testing.T) {
	c := NewCache(nil)
	room := roomDoc("attic")
	c.Apply(&protocol.RoomAddedBroadcast{Room: room})

	events := recordEvents(c)
	heater := heaterDoc(50, true)
	c.Apply(&protocol.HeaterUpdatedBroadcast{RoomID: room.ID, Heater: heater})

	_, ok := c.GetHeater(room.ID, heater.ID)
	assert.True(t, ok, "an update for an unknown heater lands as an add")
	require.Len(t, *events, 1)
	_, ok = (*events)[0].(HeaterAdded)
	assert.True(t, ok)
}

func TestRemovalsAreIdempotentButAlwaysObservable(t *testing.T) {
	c := NewCache(nil)
	events := recordEvents(c)
	roomID := uuid.New()

	c.Apply(&protocol.RoomRemovedBroadcast{RoomID: roomID})
	c.Apply(&protocol.HeaterRemovedBroadcast{RoomID: roomID, HeaterID: uuid.New()})
	c.Apply(&protocol.SensorRemovedBroadcast{RoomID: roomID, SensorID: uuid.New()})

	assert.Empty(t, c.Rooms())
	// The mirror never held these, yet every removal is still announced.
	require.Len(t, *events, 3)
	_, ok := (*events)[0].(RoomRemoved)
	assert.True(t, ok)
	_, ok = (*events)[1].(HeaterRemoved)
	assert.True(t, ok)
	_, ok = (*events)[2].(SensorRemoved)
	assert.True(t, ok)
}

func TestFeedIgnoredWhenUnresolved(t *testing.T) {
	c := NewCache(nil)
	room := roomDoc("kitchen")
	c.Apply(&protocol.RoomAddedBroadcast{Room: room})

	events := recordEvents(c)
	// Unknown room.
	c.Apply(&protocol.TemperatureFeed{RoomID: uuid.New(), SensorID: uuid.New(), Temperature: 30})
	// Known room, unknown sensor.
	c.Apply(&protocol.TemperatureFeed{RoomID: room.ID, SensorID: uuid.New(), Temperature: 30})
	assert.Empty(t, *events)
}

func TestFeedUpdatesSensorReading(t *testing.T) {
	c := NewCache(nil)
	room := roomDoc("bath")
	sensor := sensorDoc()
	c.Apply(&protocol.RoomAddedBroadcast{Room: room})
	c.Apply(&protocol.SensorAddedBroadcast{RoomID: room.ID, Sensor: sensor})

	events := recordEvents(c)
	c.Apply(&protocol.TemperatureFeed{RoomID: room.ID, SensorID: sensor.ID, Temperature: 24.5})

	mirror, ok := c.GetSensor(room.ID, sensor.ID)
	require.True(t, ok)
	assert.Equal(t, 24.5, mirror.Temperature)
	require.Len(t, *events, 1)
	tc := (*events)[0].(TemperatureChanged)
	assert.Equal(t, 0.0, tc.Last)
	assert.Equal(t, 24.5, tc.New)

	// Same value again: no event.
	c.Apply(&protocol.TemperatureFeed{RoomID: room.ID, SensorID: sensor.ID, Temperature: 24.5})
	assert.Len(t, *events, 1)
}

func TestMissTriggersLazyHydration(t *testing.T) {
	c := NewCache(nil)
	sent := make(chan protocol.Message, 4)
	c.BindSender(func(m protocol.Message) { sent <- m })

	roomID := uuid.New()
	_, ok := c.GetRoom(roomID)
	assert.False(t, ok, "a miss returns nothing immediately")

	select {
	case m := <-sent:
		req, ok := m.(*protocol.GetRoomRequest)
		require.True(t, ok)
		assert.Equal(t, roomID, req.RoomID)
		assert.NotZero(t, req.Seq)
	case <-time.After(time.Second):
		t.Fatal("no fetch dispatched for the miss")
	}

	// The response resolves the miss.
	c.Apply(&protocol.Response{
		Verb:    protocol.TypeGetRoom,
		Success: true,
		Result:  &protocol.RoomResult{Room: protocol.RoomDTO{ID: roomID, Name: "late", Width: 3, Height: 3}},
	})
	r, ok := c.GetRoom(roomID)
	require.True(t, ok)
	assert.Equal(t, "late", r.Name)
}

func TestMissWithoutSenderStaysQuiet(t *testing.T) {
	c := NewCache(nil)
	_, ok := c.GetRoom(uuid.New())
	assert.False(t, ok)
}

func TestFailedResponseLeavesMirrorUntouched(t *testing.T) {
	c := NewCache(nil)
	room := roomDoc("porch")
	c.Apply(&protocol.RoomAddedBroadcast{Room: room})

	events := recordEvents(c)
	c.Apply(&protocol.Response{Verb: protocol.TypeRemoveRoom, Success: false})

	assert.Len(t, c.Rooms(), 1)
	assert.Empty(t, *events)
}

func TestClearFiresRemovalEvents(t *testing.T) {
	c := NewCache(nil)
	c.Apply(&protocol.RoomAddedBroadcast{Room: roomDoc("a")})
	c.Apply(&protocol.RoomAddedBroadcast{Room: roomDoc("b")})

	events := recordEvents(c)
	c.Clear()

	assert.Empty(t, c.Rooms())
	assert.Len(t, *events, 2)
}

func TestOnEventReleaseStopsDelivery(t *testing.T) {
	c := NewCache(nil)
	count := 0
	release := c.OnEvent(func(Event) { count++ })

	c.Apply(&protocol.RoomAddedBroadcast{Room: roomDoc("x")})
	require.Equal(t, 1, count)

	release()
	c.Apply(&protocol.RoomAddedBroadcast{Room: roomDoc("y")})
	assert.Equal(t, 1, count)
}

func TestRoomAvgTemperature(t *testing.T) {
	room := roomDoc("avg")
	room.Sensors = []protocol.SensorDTO{
		{ID: uuid.New(), Temperature: 10},
		{ID: uuid.New(), Temperature: 20},
	}
	mirror := roomFromDTO(room)
	assert.InDelta(t, 15.0, mirror.AvgTemperature(), 1e-9)
	assert.Equal(t, 0.0, (&Room{}).AvgTemperature())
}
