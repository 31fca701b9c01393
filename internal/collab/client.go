package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 64
)

// Client is one connected viewer.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	sendMu      sync.Mutex
	send        chan []byte
	closed      bool
	ClientID    string
	DisplayName string
}

func NewClient(hub *Hub, conn *websocket.Conn, displayName string) *Client {
	id := uuid.NewString()
	if displayName == "" {
		displayName = "viewer-" + id[:8]
	}
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		ClientID:    id,
		DisplayName: displayName,
	}
}

// Serve registers the client and pumps messages until the connection or
// ctx closes.
func (c *Client) Serve(ctx context.Context) {
	if !c.hub.Register(c) {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.WritePump(ctx)
	c.ReadPump(ctx)
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "client", c.ClientID)
			c.sendError("invalid message")
			continue
		}
		msg.ClientID = c.ClientID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg without blocking. A full buffer drops the message.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		if msg.Type != TypeFrame {
			slog.Warn("client send buffer full, dropping message", "client", c.ClientID, "type", msg.Type)
		}
	}
}

func (c *Client) sendError(reason string) {
	if msg, err := newMessage(TypeError, ErrorPayload{Message: reason}); err == nil {
		c.Send(msg)
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
