package home

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddAndLookup(t *testing.T) {
	g := NewRegistry(0.1)
	require.Equal(t, 0, g.Len())

	r, err := g.AddRoom("kitchen", 4, 6)
	require.NoError(t, err)
	assert.True(t, g.ContainsRoom(r.ID))
	assert.Equal(t, 1, g.Len())

	got, ok := g.GetRoom(r.ID)
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Equal(t, 0.1, got.DecayK, "rooms inherit the registry decay constant")

	_, ok = g.GetRoom(uuid.New())
	assert.False(t, ok)
}

func TestRegistryRejectsInvalidSize(t *testing.T) {
	g := NewRegistry(0.1)
	for _, dims := range [][2]float64{{0, 5}, {5, 0}, {-1, 5}} {
		_, err := g.AddRoom("bad", dims[0], dims[1])
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
	}
	assert.Equal(t, 0, g.Len())
}

func TestRegistryRemoveRoomDisposesDevices(t *testing.T) {
	g := NewRegistry(0.1)
	r, err := g.AddRoom("attic", 8, 8)
	require.NoError(t, err)
	_, err = r.AddHeater(Position{X: 1, Y: 1}, 60, true)
	require.NoError(t, err)
	_, err = r.AddSensor(Position{X: 2, Y: 2})
	require.NoError(t, err)

	removed, ok := g.RemoveRoom(r.ID)
	require.True(t, ok)
	assert.Same(t, r, removed)
	assert.False(t, g.ContainsRoom(r.ID))

	st := removed.Snapshot()
	assert.Empty(t, st.Heaters, "removal cascades to contained devices")
	assert.Empty(t, st.Sensors)

	_, ok = g.RemoveRoom(r.ID)
	assert.False(t, ok, "removing an unknown room reports false")
}

func TestRegistryClearRooms(t *testing.T) {
	g := NewRegistry(0.1)
	for i := 0; i < 3; i++ {
		_, err := g.AddRoom("room", 5, 5)
		require.NoError(t, err)
	}

	removed := g.ClearRooms()
	assert.Len(t, removed, 3)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Rooms())
}
