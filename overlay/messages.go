/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package overlay

import (
	"github.com/Seednode/hitbox/layout"
	"github.com/Seednode/hitbox/player"
	"github.com/Seednode/hitbox/state"
)

// Action is an operator request, as sent by panels, overlay clicks and the
// HTTP API.
type Action struct {
	Action  string  `json:"action"`
	Tile    int     `json:"tile,omitempty"`
	Value   string  `json:"value,omitempty"`   // name or source
	Seconds float64 `json:"seconds,omitempty"` // seek position or delta
}

// Messages coming from clients
type inbound struct {
	Type string `json:"type"` // "action", "mounted", "unmounted", "player_message"
	Action

	Epoch     int    `json:"epoch,omitempty"`      // mounted / unmounted
	RequestID string `json:"request_id,omitempty"` // player_message
	Origin    string `json:"origin,omitempty"`     // player_message
	Data      string `json:"data,omitempty"`       // player_message, raw text from the player
}

// View is the state frame pushed to every client after each change.
type View struct {
	Type     string             `json:"type"` // "state"
	Table    string             `json:"table"`
	Canvas   layout.Size        `json:"canvas"`
	Snapshot state.Snapshot     `json:"snapshot"`
	Layout   []layout.Placement `json:"layout"`
	Labels   map[int]string     `json:"labels"`
	Embeds   map[int]string     `json:"embeds"`
	Clock    string             `json:"clock"`
	Hits     int                `json:"hits"`    // across all tiles
	Mounted  []int              `json:"mounted"` // tiles with a ready player surface
	Seeks    SeekStats          `json:"seeks"`
}

// SeekStats summarizes round trips of applied relative seeks.
type SeekStats struct {
	Count int     `json:"count"`
	P50   float64 `json:"p50_ms"`
	P99   float64 `json:"p99_ms"`
}

// CommandFrame carries one player command to an overlay page.
type CommandFrame struct {
	Type      string         `json:"type"` // "command"
	Tile      int            `json:"tile"`
	Epoch     int            `json:"epoch"`
	RequestID string         `json:"request_id,omitempty"`
	Payload   player.Command `json:"payload"`
}

// Ack reports a rejected action to the client that sent it.
type Ack struct {
	Type   string `json:"type"` // "error"
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}
