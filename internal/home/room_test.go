package home

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	r, err := NewRoom("living room", 10, 10, 0.1)
	require.NoError(t, err)
	return r
}

func TestAddHeaterOutOfBoundsFailsValidation(t *testing.T) {
	r := newTestRoom(t)

	for _, pos := range []Position{
		{X: -0.1, Y: 5},
		{X: 10.1, Y: 5},
		{X: 5, Y: -1},
		{X: 5, Y: 10.001},
	} {
		_, err := r.AddHeater(pos, 50, true)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), "expected ValidationError for %+v", pos)
	}
	assert.Empty(t, r.Snapshot().Heaters, "failed adds must not mutate the room")

	_, err := r.AddSensor(Position{X: 11, Y: 0})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Empty(t, r.Snapshot().Sensors)
}

func TestAddAcceptsBoundaryPositions(t *testing.T) {
	r := newTestRoom(t)
	for _, pos := range []Position{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}} {
		_, err := r.AddHeater(pos, 50, false)
		assert.NoError(t, err)
	}
}

func TestRemoveUnknownDeviceIsNoop(t *testing.T) {
	r := newTestRoom(t)
	assert.False(t, r.RemoveHeater(uuid.New()))
	assert.False(t, r.RemoveSensor(uuid.New()))

	h, err := r.AddHeater(Position{X: 1, Y: 1}, 40, true)
	require.NoError(t, err)
	assert.True(t, r.RemoveHeater(h.ID))
	assert.False(t, r.RemoveHeater(h.ID), "second remove of the same id is a no-op")
}

func TestConcurrentAddHeaterMintsUniqueIDs(t *testing.T) {
	r := newTestRoom(t)

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := r.AddHeater(Position{X: 5, Y: 5}, 30, false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st := r.Snapshot()
	require.Len(t, st.Heaters, n)
	seen := map[uuid.UUID]struct{}{}
	for _, h := range st.Heaters {
		_, dup := seen[h.ID]
		require.False(t, dup, "duplicate heater id %s", h.ID)
		seen[h.ID] = struct{}{}
	}
}

func TestUpdateHeaterEmitsChangeEvents(t *testing.T) {
	r := newTestRoom(t)
	h, err := r.AddHeater(Position{X: 2, Y: 2}, 40, false)
	require.NoError(t, err)

	var events []Event
	release := r.SubscribeEvents(func(ev Event) { events = append(events, ev) })
	defer release()

	_, err = r.UpdateHeater(h.ID, Position{X: 3, Y: 4}, 55, true)
	require.NoError(t, err)
	require.Len(t, events, 3)

	pc, ok := events[0].(PositionChanged)
	require.True(t, ok)
	assert.Equal(t, Position{X: 2, Y: 2}, pc.Last)
	assert.Equal(t, Position{X: 3, Y: 4}, pc.New)

	tc, ok := events[1].(HeaterTemperatureChanged)
	require.True(t, ok)
	assert.Equal(t, 40.0, tc.Last)
	assert.Equal(t, 55.0, tc.New)

	ec, ok := events[2].(HeaterEnableChanged)
	require.True(t, ok)
	assert.False(t, ec.Last)
	assert.True(t, ec.New)
}

func TestPositionEpsilonSuppressesNoiseEvents(t *testing.T) {
	r := newTestRoom(t)
	h, err := r.AddHeater(Position{X: 2, Y: 2}, 40, false)
	require.NoError(t, err)

	var events []Event
	release := r.SubscribeEvents(func(ev Event) { events = append(events, ev) })
	defer release()

	_, err = r.UpdateHeater(h.ID, Position{X: 2 + 1e-12, Y: 2 - 1e-12}, 40, false)
	require.NoError(t, err)
	assert.Empty(t, events, "sub-epsilon moves must not fire change events")
}

func TestUpdateUnknownHeaterReturnsNotFound(t *testing.T) {
	r := newTestRoom(t)
	_, err := r.UpdateHeater(uuid.New(), Position{X: 1, Y: 1}, 20, true)
	var nfErr *NotFoundError
	require.True(t, errors.As(err, &nfErr))
}

func TestSubscriptionReleaseStopsDelivery(t *testing.T) {
	r := newTestRoom(t)
	count := 0
	release := r.SubscribeEvents(func(Event) { count++ })

	_, err := r.AddSensor(Position{X: 1, Y: 1})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	release()
	_, err = r.AddSensor(Position{X: 2, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAvgTemperature(t *testing.T) {
	r := newTestRoom(t)
	assert.Equal(t, 0.0, r.AvgTemperature(), "no sensors reads zero")

	s1, err := r.AddSensor(Position{X: 1, Y: 1})
	require.NoError(t, err)
	s2, err := r.AddSensor(Position{X: 9, Y: 9})
	require.NoError(t, err)

	_, err = r.OverrideSensorTemperature(s1.ID, 10)
	require.NoError(t, err)
	_, err = r.OverrideSensorTemperature(s2.ID, 30)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, r.AvgTemperature(), 1e-9)
}

func TestAdvanceWarmsSensorFromActiveHeater(t *testing.T) {
	r := newTestRoom(t)
	s, err := r.AddSensor(Position{X: 5, Y: 5})
	require.NoError(t, err)
	_, err = r.AddHeater(Position{X: 5, Y: 5}, 100, true)
	require.NoError(t, err)

	r.Advance(1.0)

	st, ok := r.Sensor(s.ID)
	require.True(t, ok)
	assert.Greater(t, st.Temperature, 0.0)
	assert.LessOrEqual(t, st.Temperature, 100.0)
	assert.Greater(t, r.TemperatureAt(5, 5), 0.0)
}

func TestAdvanceIgnoresDisabledHeaters(t *testing.T) {
	r := newTestRoom(t)
	s, err := r.AddSensor(Position{X: 5, Y: 5})
	require.NoError(t, err)
	_, err = r.AddHeater(Position{X: 5, Y: 5}, 100, false)
	require.NoError(t, err)

	r.Advance(1.0)

	st, _ := r.Sensor(s.ID)
	assert.Equal(t, 0.0, st.Temperature, "a heater that is off contributes nothing")
}
