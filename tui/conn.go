/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/Seednode/hitbox/overlay"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// Sender delivers operator actions to the overlay.
type Sender interface {
	Send(a overlay.Action) error
}

// Conn is a panel client connection to an overlay.
type Conn struct {
	ws *websocket.Conn

	mu sync.Mutex
}

// Dial connects to an overlay's websocket endpoint as a panel.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	target, err := panelURL(addr)
	if err != nil {
		return nil, err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return &Conn{ws: ws}, nil
}

// panelURL sets role=panel on addr, keeping any query it already has.
func panelURL(addr string) (string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("invalid overlay url %q: %w", addr, err)
	}

	q := u.Query()
	q.Set("role", "panel")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *Conn) Send(a overlay.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ws.WriteJSON(struct {
		Type string `json:"type"`
		overlay.Action
	}{"action", a})
}

type frame struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Error  string `json:"error"`
}

// Listen forwards every frame from the overlay to p until the connection
// closes.
func (c *Conn) Listen(p *tea.Program) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			p.Send(DisconnectedMsg{Err: err})
			return
		}

		if msg := decode(data); msg != nil {
			p.Send(msg)
		}
	}
}

func decode(data []byte) tea.Msg {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}

	switch f.Type {
	case "state":
		var v overlay.View
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		return ViewMsg{View: v}
	case "error":
		return ErrorMsg{Err: fmt.Errorf("%s: %s", f.Action, f.Error)}
	default:
		return nil
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.ws.Close()
}

// Run opens the panel against addr and blocks until the operator quits or
// ctx ends.
func Run(ctx context.Context, addr string) error {
	conn, err := Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	p := tea.NewProgram(New(conn), tea.WithAltScreen(), tea.WithContext(ctx))
	go conn.Listen(p)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}

	return nil
}
