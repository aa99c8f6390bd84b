package client

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"HeatGrid/internal/protocol"
)

// DefaultRetryInterval is the fixed reconnect pace; there is no backoff
// growth and no attempt limit.
const DefaultRetryInterval = 5 * time.Second

// Conn maintains one persistent full-duplex connection to the server,
// reconnecting unconditionally on a fixed interval. Each established
// connection starts with a GetAll so the cache fully replaces itself, then
// one receive loop feeds every inbound frame into the cache.
type Conn struct {
	url   string
	cache *Cache
	retry time.Duration
	log   *zap.Logger

	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(url string, cache *Cache, retry time.Duration, log *zap.Logger) *Conn {
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Conn{url: url, cache: cache, retry: retry, log: log}
	cache.BindSender(c.Send)
	return c
}

// Run dials, serves and redials until the context is cancelled.
func (c *Conn) Run(ctx context.Context) error {
	for {
		ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("connect failed", zap.String("url", c.url), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retry):
			}
			continue
		}

		c.setConn(ws)
		c.log.Info("connected", zap.String("url", c.url))
		c.Send(&protocol.GetAllRequest{})

		c.readLoop(ctx, ws)
		c.setConn(nil)
		_ = ws.Close()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry):
		}
	}
}

// Send delivers one message fire-and-forget: a detached task, no timeout, no
// error reported to the caller. Messages sent while disconnected are
// dropped; the reconnect GetAll resynchronizes.
func (c *Conn) Send(msg protocol.Message) {
	go func() {
		data, err := protocol.Encode(msg)
		if err != nil {
			c.log.Error("encode outbound", zap.Error(err))
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.ws == nil {
			return
		}
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			c.log.Warn("send failed", zap.String("type", string(msg.Type())), zap.Error(err))
		}
	}()
}

func (c *Conn) readLoop(ctx context.Context, ws *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("connection lost", zap.Error(err))
			}
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			c.log.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		c.cache.Apply(msg)
	}
}

func (c *Conn) setConn(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
}
