package server

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HeatGrid/internal/protocol"
)

// fakeLink records everything written to it.
type fakeLink struct {
	mu      sync.Mutex
	frames  [][]byte
	closed  bool
	failAll bool
}

func (f *fakeLink) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("link down")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeLink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeLink) messages(t *testing.T) []protocol.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Message, 0, len(f.frames))
	for _, raw := range f.frames {
		m, err := protocol.Decode(raw)
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

func TestSendToOneReachesOnlyTheTarget(t *testing.T) {
	cm := NewConnManager(nil, nil)
	a, b := &fakeLink{}, &fakeLink{}
	idA := cm.Register(a)
	cm.Register(b)

	cm.SendToOne(idA, &protocol.RoomRemovedBroadcast{RoomID: uuid.New()})

	assert.Len(t, a.messages(t), 1)
	assert.Empty(t, b.messages(t))

	// Unknown target is a silent no-op.
	cm.SendToOne(uuid.New(), &protocol.RoomRemovedBroadcast{RoomID: uuid.New()})
}

func TestBroadcastReachesEveryPeer(t *testing.T) {
	cm := NewConnManager(nil, nil)
	links := []*fakeLink{{}, {}, {}}
	for _, l := range links {
		cm.Register(l)
	}

	cm.Broadcast(&protocol.RoomRemovedBroadcast{RoomID: uuid.New()})

	for _, l := range links {
		assert.Len(t, l.messages(t), 1)
	}
}

func TestSendToSubsetSkipsUnknownIDs(t *testing.T) {
	cm := NewConnManager(nil, nil)
	a, b := &fakeLink{}, &fakeLink{}
	idA := cm.Register(a)
	cm.Register(b)

	cm.SendToSubset([]uuid.UUID{idA, uuid.New()}, &protocol.TemperatureFeed{RoomID: uuid.New()})

	assert.Len(t, a.messages(t), 1)
	assert.Empty(t, b.messages(t))
}

func TestSendFailureDoesNotStopDelivery(t *testing.T) {
	cm := NewConnManager(nil, nil)
	bad := &fakeLink{failAll: true}
	good := &fakeLink{}
	cm.Register(bad)
	cm.Register(good)

	cm.Broadcast(&protocol.RoomRemovedBroadcast{RoomID: uuid.New()})

	assert.Len(t, good.messages(t), 1, "one failing peer must not block the rest")
}

func TestSubscribeTwiceFails(t *testing.T) {
	cm := NewConnManager(nil, nil)
	peerID := cm.Register(&fakeLink{})
	roomID := uuid.New()

	assert.True(t, cm.Subscribe(roomID, peerID))
	assert.False(t, cm.Subscribe(roomID, peerID), "double subscribe is rejected")
	assert.Len(t, cm.Subscribers(roomID), 1)
}

func TestUnsubscribeWithoutSubscriptionFails(t *testing.T) {
	cm := NewConnManager(nil, nil)
	peerID := cm.Register(&fakeLink{})
	roomID := uuid.New()

	assert.False(t, cm.Unsubscribe(roomID, peerID))
	require.True(t, cm.Subscribe(roomID, peerID))
	assert.True(t, cm.Unsubscribe(roomID, peerID))
	assert.False(t, cm.Unsubscribe(roomID, peerID))
}

func TestDropRemovesPeerAndSubscriptions(t *testing.T) {
	cm := NewConnManager(nil, nil)
	link := &fakeLink{}
	peerID := cm.Register(link)
	roomID := uuid.New()
	require.True(t, cm.Subscribe(roomID, peerID))

	cm.Drop(peerID)

	assert.True(t, link.closed)
	assert.Equal(t, 0, cm.PeerCount())
	assert.Empty(t, cm.Subscribers(roomID), "dropped peers leave every feed list")

	cm.Drop(peerID)
}

func TestDropRoomSubscriptions(t *testing.T) {
	cm := NewConnManager(nil, nil)
	peerID := cm.Register(&fakeLink{})
	roomID := uuid.New()
	require.True(t, cm.Subscribe(roomID, peerID))

	cm.DropRoomSubscriptions(roomID)

	assert.Empty(t, cm.Subscribers(roomID))
	assert.True(t, cm.Subscribe(roomID, peerID), "a fresh subscribe works after the room list is gone")
}

func TestCloseAll(t *testing.T) {
	cm := NewConnManager(nil, nil)
	a, b := &fakeLink{}, &fakeLink{}
	cm.Register(a)
	cm.Register(b)

	cm.CloseAll()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 0, cm.PeerCount())
}
