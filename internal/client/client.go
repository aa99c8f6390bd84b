package client

import (
	"context"
	"time"

	"go.uber.org/zap"

	"HeatGrid/internal/protocol"
)

// Client bundles the mirror cache with its connection.
type Client struct {
	Cache *Cache
	conn  *Conn
}

func New(url string, retry time.Duration, log *zap.Logger) *Client {
	cache := NewCache(log)
	return &Client{
		Cache: cache,
		conn:  NewConn(url, cache, retry, log),
	}
}

// Run keeps the connection alive until the context is cancelled, then tears
// the cache down.
func (c *Client) Run(ctx context.Context) error {
	err := c.conn.Run(ctx)
	c.Cache.Clear()
	return err
}

// Send exposes the fire-and-forget outbound path for callers issuing their
// own requests.
func (c *Client) Send(msg protocol.Message) {
	c.conn.Send(msg)
}
