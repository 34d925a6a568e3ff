package websocket

import (
	"context"
	"errors"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	// Clients only send control frames; anything larger is abuse.
	readLimit = 512
)

// Client is one browser connection watching a kitchen.
type Client struct {
	hub       *Hub
	conn      *ws.Conn
	kitchenID string
	send      chan []byte
}

// NewClient creates a Client for kitchenID on conn.
func NewClient(hub *Hub, kitchenID string, conn *ws.Conn) *Client {
	conn.SetReadLimit(readLimit)
	return &Client{
		hub:       hub,
		conn:      conn,
		kitchenID: kitchenID,
		send:      make(chan []byte, sendBufferSize),
	}
}

// Run registers the client with its kitchen and pumps events to it until
// the connection ends or the kitchen is closed.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// close ends the connection with a going-away status so the browser knows
// to reload rather than reconnect to the same kitchen.
func (c *Client) close(reason string) {
	if c.conn == nil {
		return
	}
	c.conn.Close(ws.StatusGoingAway, reason)
}

// readPump discards incoming messages until the connection ends.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			switch ws.CloseStatus(err) {
			case ws.StatusNormalClosure, ws.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					c.hub.logger.Debug("websocket read", "kitchen", c.kitchenID, "error", err)
				}
			}
			return
		}
	}
}

// writePump delivers queued events and pings to detect dead peers.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
