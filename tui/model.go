/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"errors"
	"time"

	"github.com/Seednode/hitbox/layout"
	"github.com/Seednode/hitbox/overlay"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	animFrames   = 8
	animInterval = 40 * time.Millisecond
)

// ViewMsg carries a state frame from the overlay.
type ViewMsg struct {
	View overlay.View
}

// ErrorMsg reports a rejected action or a failed send.
type ErrorMsg struct {
	Err error
}

// DisconnectedMsg is sent once the connection to the overlay is lost.
type DisconnectedMsg struct {
	Err error
}

type animTickMsg struct {
	gen int
}

var errNoTile = errors.New("no tile selected")

// Model is the bubbletea model for the control panel.
type Model struct {
	sender Sender

	view      overlay.View
	connected bool
	ready     bool
	selected  int // index into the roster
	lastErr   error

	// Layout transition of the miniature.
	moves   []layout.Move
	frame   int
	animGen int

	width    int
	height   int
	quitting bool
}

// New creates a panel model that sends actions through s.
func New(s Sender) Model {
	return Model{
		sender:    s,
		connected: true,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// =============================================================================
// Update
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ViewMsg:
		if m.ready && msg.View.Snapshot.Version < m.view.Snapshot.Version {
			return m, nil
		}
		var cmd tea.Cmd
		if m.ready && moved(m.view.Layout, msg.View.Layout) {
			m.moves = layout.Moves(m.placements(), msg.View.Layout)
			m.frame = 0
			m.animGen++
			cmd = animTick(m.animGen)
		}

		m.view = msg.View
		m.ready = true
		m.lastErr = nil
		if n := len(m.view.Snapshot.Tiles); m.selected >= n {
			m.selected = max(n-1, 0)
		}
		return m, cmd

	case animTickMsg:
		if msg.gen != m.animGen || m.moves == nil {
			return m, nil
		}
		m.frame++
		if m.frame >= animFrames {
			m.moves = nil
			return m, nil
		}
		return m, animTick(m.animGen)

	case ErrorMsg:
		m.lastErr = msg.Err
		return m, nil

	case DisconnectedMsg:
		m.connected = false
		m.lastErr = msg.Err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "1", "2", "3", "4", "5", "6", "7", "8":
		if i := int(key[0] - '1'); i < len(m.view.Snapshot.Tiles) {
			m.selected = i
		}
		return m, nil

	case "left", "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "right", "down", "j":
		if m.selected < len(m.view.Snapshot.Tiles)-1 {
			m.selected++
		}
		return m, nil

	case "0":
		return m, m.send(overlay.Action{Action: "clear_focus"})
	case "m":
		return m, m.send(overlay.Action{Action: "mute_all"})
	case "t":
		return m, m.send(overlay.Action{Action: "timer_toggle"})
	case "T":
		return m, m.send(overlay.Action{Action: "timer_reset"})
	case "R":
		return m, m.send(overlay.Action{Action: "reset_hits"})
	}

	tile, ok := m.selectedTile()
	if !ok {
		if _, bound := tileKeys[key]; bound {
			m.lastErr = errNoTile
		}
		return m, nil
	}

	if a, bound := tileKeys[key]; bound {
		a.Tile = tile
		return m, m.send(a)
	}

	return m, nil
}

// tileKeys are the bindings that act on the selected tile.
var tileKeys = map[string]overlay.Action{
	"f":     {Action: "toggle_focus"},
	"enter": {Action: "toggle_focus"},
	"h":     {Action: "add_hit"},
	"H":     {Action: "remove_hit"},
	"r":     {Action: "reload"},
	"p":     {Action: "play"},
	"P":     {Action: "pause"},
	"[":     {Action: "seek_relative", Seconds: -10},
	"]":     {Action: "seek_relative", Seconds: 10},
	"{":     {Action: "seek_relative", Seconds: -30},
	"}":     {Action: "seek_relative", Seconds: 30},
}

func (m Model) selectedTile() (int, bool) {
	tiles := m.view.Snapshot.Tiles
	if !m.ready || m.selected < 0 || m.selected >= len(tiles) {
		return 0, false
	}

	return tiles[m.selected].ID, true
}

func (m Model) send(a overlay.Action) tea.Cmd {
	s := m.sender

	return func() tea.Msg {
		if err := s.Send(a); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	}
}

// =============================================================================
// Layout transitions
// =============================================================================

func animTick(gen int) tea.Cmd {
	return tea.Tick(animInterval, func(time.Time) tea.Msg {
		return animTickMsg{gen: gen}
	})
}

func moved(from, to []layout.Placement) bool {
	if len(from) != len(to) {
		return true
	}

	prev := make(map[int]layout.Rect, len(from))
	for _, p := range from {
		prev[p.TileID] = p.Rect
	}
	for _, p := range to {
		if r, ok := prev[p.TileID]; !ok || r != p.Rect {
			return true
		}
	}

	return false
}

// placements is the layout as currently drawn, part way through a
// transition if one is running.
func (m Model) placements() []layout.Placement {
	out := append([]layout.Placement(nil), m.view.Layout...)
	if m.moves == nil {
		return out
	}

	progress := float64(m.frame) / animFrames
	at := make(map[int]layout.Rect, len(m.moves))
	for _, mv := range m.moves {
		at[mv.TileID] = mv.At(progress)
	}

	for i, p := range out {
		if r, ok := at[p.TileID]; ok {
			out[i].Rect = r
		}
	}

	return out
}
