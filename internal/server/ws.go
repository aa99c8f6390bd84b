package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"HeatGrid/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// serveWS upgrades one connection and runs its receive loop. Malformed
// frames are dropped without a response or disconnect; a transport error
// ends the loop and the deferred Drop cleans up connection state and
// subscriptions.
func (a *App) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(a.cfg.ReadLimit)

	peerID := a.conns.Register(conn)
	defer a.conns.Drop(peerID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			a.log.Debug("dropping malformed frame",
				zap.String("peer", peerID.String()), zap.Error(err))
			continue
		}
		if msg.Kind() != protocol.KindRequest {
			a.log.Debug("ignoring non-request frame",
				zap.String("peer", peerID.String()), zap.String("kind", string(msg.Kind())))
			continue
		}
		a.dispatcher.Dispatch(peerID, msg)
	}
}
