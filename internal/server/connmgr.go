package server

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"HeatGrid/internal/protocol"
)

// peerLink is the write side of one connection. *websocket.Conn satisfies it;
// tests plug in a recording fake.
type peerLink interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type peer struct {
	id   uuid.UUID
	link peerLink
	mu   sync.Mutex
}

func (p *peer) write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.link.WriteMessage(websocket.TextMessage, data)
}

// ConnManager tracks connected peers under opaque identities and delivers
// unicast, subset and broadcast messages. Delivery is fire-and-forget: no
// acknowledgement, no retry, no cross-peer ordering; failures go to the log
// sink only.
type ConnManager struct {
	mu      sync.Mutex
	peers   map[uuid.UUID]*peer
	subs    map[uuid.UUID]map[uuid.UUID]struct{}
	log     *zap.Logger
	metrics *Metrics
}

func NewConnManager(log *zap.Logger, metrics *Metrics) *ConnManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConnManager{
		peers:   map[uuid.UUID]*peer{},
		subs:    map[uuid.UUID]map[uuid.UUID]struct{}{},
		log:     log,
		metrics: metrics,
	}
}

// Register assigns the connection an opaque identity.
func (cm *ConnManager) Register(link peerLink) uuid.UUID {
	p := &peer{id: uuid.New(), link: link}
	cm.mu.Lock()
	cm.peers[p.id] = p
	count := len(cm.peers)
	cm.mu.Unlock()
	if cm.metrics != nil {
		cm.metrics.ConnectedPeers.Set(float64(count))
	}
	cm.log.Info("peer connected", zap.String("peer", p.id.String()))
	return p.id
}

// Drop closes the connection and removes the identity from every
// subscription list.
func (cm *ConnManager) Drop(id uuid.UUID) {
	cm.mu.Lock()
	p, ok := cm.peers[id]
	if ok {
		delete(cm.peers, id)
	}
	for _, roomSubs := range cm.subs {
		delete(roomSubs, id)
	}
	count := len(cm.peers)
	cm.mu.Unlock()
	if !ok {
		return
	}
	_ = p.link.Close()
	if cm.metrics != nil {
		cm.metrics.ConnectedPeers.Set(float64(count))
	}
	cm.log.Info("peer disconnected", zap.String("peer", id.String()))
}

func (cm *ConnManager) SendToOne(id uuid.UUID, msg protocol.Message) {
	cm.mu.Lock()
	p, ok := cm.peers[id]
	cm.mu.Unlock()
	if !ok {
		return
	}
	cm.deliver([]*peer{p}, msg)
}

func (cm *ConnManager) SendToSubset(ids []uuid.UUID, msg protocol.Message) {
	cm.mu.Lock()
	peers := make([]*peer, 0, len(ids))
	for _, id := range ids {
		if p, ok := cm.peers[id]; ok {
			peers = append(peers, p)
		}
	}
	cm.mu.Unlock()
	cm.deliver(peers, msg)
}

func (cm *ConnManager) Broadcast(msg protocol.Message) {
	cm.mu.Lock()
	peers := make([]*peer, 0, len(cm.peers))
	for _, p := range cm.peers {
		peers = append(peers, p)
	}
	cm.mu.Unlock()
	cm.deliver(peers, msg)
}

func (cm *ConnManager) deliver(peers []*peer, msg protocol.Message) {
	if len(peers) == 0 {
		return
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		cm.log.Error("encode outbound", zap.Error(err))
		return
	}
	for _, p := range peers {
		if err := p.write(data); err != nil {
			cm.log.Warn("send failed",
				zap.String("peer", p.id.String()),
				zap.String("type", string(msg.Type())),
				zap.Error(err))
			if cm.metrics != nil {
				cm.metrics.SendFailures.Inc()
			}
			continue
		}
		if cm.metrics != nil {
			cm.metrics.MessagesSent.WithLabelValues(string(msg.Kind())).Inc()
		}
	}
}

// Subscribe adds a peer to a room's temperature feed. Subscribing twice
// fails.
func (cm *ConnManager) Subscribe(roomID, peerID uuid.UUID) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	roomSubs, ok := cm.subs[roomID]
	if !ok {
		roomSubs = map[uuid.UUID]struct{}{}
		cm.subs[roomID] = roomSubs
	}
	if _, dup := roomSubs[peerID]; dup {
		return false
	}
	roomSubs[peerID] = struct{}{}
	return true
}

// Unsubscribe removes a peer from a room's feed; it fails when the peer was
// not subscribed.
func (cm *ConnManager) Unsubscribe(roomID, peerID uuid.UUID) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	roomSubs, ok := cm.subs[roomID]
	if !ok {
		return false
	}
	if _, found := roomSubs[peerID]; !found {
		return false
	}
	delete(roomSubs, peerID)
	return true
}

func (cm *ConnManager) Subscribers(roomID uuid.UUID) []uuid.UUID {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	roomSubs := cm.subs[roomID]
	out := make([]uuid.UUID, 0, len(roomSubs))
	for id := range roomSubs {
		out = append(out, id)
	}
	return out
}

// DropRoomSubscriptions discards a removed room's feed list.
func (cm *ConnManager) DropRoomSubscriptions(roomID uuid.UUID) {
	cm.mu.Lock()
	delete(cm.subs, roomID)
	cm.mu.Unlock()
}

func (cm *ConnManager) PeerCount() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.peers)
}

// CloseAll drops every peer, used on shutdown.
func (cm *ConnManager) CloseAll() {
	cm.mu.Lock()
	peers := make([]*peer, 0, len(cm.peers))
	for _, p := range cm.peers {
		peers = append(peers, p)
	}
	cm.peers = map[uuid.UUID]*peer{}
	cm.subs = map[uuid.UUID]map[uuid.UUID]struct{}{}
	cm.mu.Unlock()
	for _, p := range peers {
		_ = p.link.Close()
	}
	if cm.metrics != nil {
		cm.metrics.ConnectedPeers.Set(0)
	}
}
