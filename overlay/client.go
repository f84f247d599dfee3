/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package overlay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Seednode/hitbox/player"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Role is what a connected page does.
type Role string

const (
	// RoleOverlay pages render tiles, mount player surfaces and relay
	// player replies.
	RoleOverlay Role = "overlay"
	// RolePanel pages only send actions and watch state.
	RolePanel Role = "panel"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOverlay, RolePanel:
		return Role(s), true
	case "":
		return RolePanel, true
	default:
		return "", false
	}
}

// Client is one websocket connection.
type Client struct {
	id   string
	role Role
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan any
	closed bool
}

func newClient(conn *websocket.Conn, role Role) *Client {
	return &Client{
		id:   uuid.NewString(),
		role: role,
		conn: conn,
		send: make(chan any, sendBuffer),
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Role() Role { return c.role }

// Key implements player.Surface.
func (c *Client) Key() string { return c.id }

// Send implements player.Surface by queuing a command frame for the page.
func (c *Client) Send(tile, epoch int, cmd player.Command, requestID string) bool {
	return c.enqueue(CommandFrame{
		Type:      "command",
		Tile:      tile,
		Epoch:     epoch,
		RequestID: requestID,
		Payload:   cmd,
	})
}

// enqueue never blocks; a full buffer drops the message.
func (c *Client) enqueue(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("client_id", c.id).Msg("websocket closed unexpectedly")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug().Err(err).Str("client_id", c.id).Msg("ignoring malformed frame")
			continue
		}

		switch msg.Type {
		case "action":
			submit(h, h.actions, actionRequest{client: c, action: msg.Action})
		case "mounted", "unmounted":
			if c.role != RoleOverlay {
				continue
			}
			submit(h, h.mounts, mountRequest{client: c, tile: msg.Tile, epoch: msg.Epoch, mounted: msg.Type == "mounted"})
		case "player_message":
			if c.role != RoleOverlay {
				continue
			}
			submit(h, h.relays, relayRequest{tile: msg.Tile, requestID: msg.RequestID, origin: msg.Origin, data: []byte(msg.Data)})
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
