/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package overlay runs the event loop that owns the overlay's state and
// fans it out to connected pages.
//
// A single Hub goroutine applies every operator action through the state
// reducer, issues the player commands a change implies, and pushes a fresh
// View to each client. Overlay pages mount player surfaces and relay the
// players' replies back; panels only send actions.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Seednode/hitbox/layout"
	"github.com/Seednode/hitbox/player"
	"github.com/Seednode/hitbox/state"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrClosed        = errors.New("overlay hub closed")
)

type Options struct {
	Roster        state.Roster
	Table         layout.Table
	Clock         clockwork.Clock
	SeekTimeout   time.Duration
	TrustedOrigin string
	Logger        *zerolog.Logger
	Metrics       *Metrics
}

type actionRequest struct {
	client *Client
	action Action
	reply  chan error
}

type mountRequest struct {
	client  *Client
	tile    int
	epoch   int
	mounted bool
}

type relayRequest struct {
	tile      int
	requestID string
	origin    string
	data      []byte
}

type Hub struct {
	snap    state.Snapshot
	table   layout.Table
	ctrl    *player.Controller
	metrics *Metrics
	clock   clockwork.Clock
	ticker  clockwork.Ticker
	log     zerolog.Logger
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest
	mounts   chan mountRequest
	relays   chan relayRequest
	queries  chan chan View

	done chan struct{}
}

// NewHub checks that the table can place every tile of the roster and
// prepares a hub for it. Call Run to start it.
func NewHub(opts Options) (*Hub, error) {
	if err := opts.Roster.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Table.Validate(opts.Roster.Slots()); err != nil {
		return nil, fmt.Errorf("layout %s cannot place roster: %w", opts.Table.Name, err)
	}

	h := &Hub{
		snap:     opts.Roster.Snapshot(),
		table:    opts.Table,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		actions:  make(chan actionRequest),
		mounts:   make(chan mountRequest),
		relays:   make(chan relayRequest),
		queries:  make(chan chan View),
		done:     make(chan struct{}),
	}

	if h.clock == nil {
		h.clock = clockwork.NewRealClock()
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	if opts.Logger != nil {
		h.log = opts.Logger.With().Str("component", "hub").Logger()
	} else {
		h.log = zerolog.Nop()
	}

	h.ctrl = player.NewController(player.NewRegistry(), player.Options{
		Clock:         h.clock,
		SeekTimeout:   opts.SeekTimeout,
		TrustedOrigin: opts.TrustedOrigin,
		Logger:        opts.Logger,
		Recorder:      h.metrics,
	})

	return h, nil
}

func (h *Hub) Controller() *player.Controller {
	return h.ctrl
}

func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Run is the hub's event loop. It returns when ctx ends, after closing
// every client and abandoning pending seeks.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		var tick <-chan time.Time
		if h.ticker != nil {
			tick = h.ticker.Chan()
		}

		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = true
			h.metrics.ClientJoined(c.role)
			h.log.Debug().Str("client_id", c.id).Str("role", string(c.role)).Msg("client connected")

			c.enqueue(h.view())

		case c := <-h.unreg:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			h.metrics.ClientLeft(c.role)
			dropped := h.ctrl.Registry().Drop(c.Key())
			c.close()
			h.log.Debug().Str("client_id", c.id).Int("surfaces", dropped).Msg("client disconnected")

		case req := <-h.actions:
			err := h.apply(req.action)
			if err != nil {
				h.log.Debug().Err(err).Str("action", req.action.Action).Int("tile", req.action.Tile).Msg("action rejected")
				if req.client != nil {
					req.client.enqueue(Ack{Type: "error", Action: req.action.Action, Error: err.Error()})
				}
			} else {
				h.metrics.Action(req.action.Action)
			}
			if req.reply != nil {
				req.reply <- err
			}

		case m := <-h.mounts:
			h.mount(m)

		case r := <-h.relays:
			h.ctrl.Deliver(r.tile, r.requestID, r.origin, r.data)

		case q := <-h.queries:
			q <- h.view()

		case <-tick:
			h.reduce(state.Tick{})
		}
	}
}

func (h *Hub) shutdown() {
	if h.ticker != nil {
		h.ticker.Stop()
		h.ticker = nil
	}
	for c := range h.clients {
		h.ctrl.Registry().Drop(c.Key())
		c.close()
		delete(h.clients, c)
	}
	h.ctrl.Close()
	close(h.done)
}

// Dispatch applies an action and waits for the result.
func (h *Hub) Dispatch(ctx context.Context, a Action) error {
	reply := make(chan error, 1)

	select {
	case h.actions <- actionRequest{action: a, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrClosed
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns the current state frame.
func (h *Hub) View(ctx context.Context) (View, error) {
	q := make(chan View, 1)

	select {
	case h.queries <- q:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-h.done:
		return View{}, ErrClosed
	}

	select {
	case v := <-q:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func submit[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	if !submit(h, h.unreg, c) {
		c.close()
	}
}

func (h *Hub) mount(m mountRequest) {
	reg := h.ctrl.Registry()

	if !h.clients[m.client] {
		return
	}

	if !m.mounted {
		reg.Unmount(m.tile, m.epoch, m.client.Key())
		return
	}

	if !h.snap.Has(m.tile) || m.epoch != h.snap.Epoch(m.tile) {
		h.log.Debug().Int("tile", m.tile).Int("epoch", m.epoch).Msg("ignoring mount of stale surface")
		return
	}

	if reg.Mount(m.tile, m.epoch, m.client) {
		h.ctrl.SyncMute(m.tile, h.snap.Focused())
	}
}

func (h *Hub) apply(a Action) error {
	switch a.Action {
	case "toggle_focus":
		return h.reduceTile(a.Tile, state.ToggleFocus{ID: a.Tile})
	case "set_focus":
		return h.reduceTile(a.Tile, state.SetFocus{ID: a.Tile})
	case "clear_focus":
		h.reduce(state.ClearFocus{})
	case "add_hit":
		return h.reduceTile(a.Tile, state.AddHit{ID: a.Tile})
	case "remove_hit":
		return h.reduceTile(a.Tile, state.RemoveHit{ID: a.Tile})
	case "reset_hits":
		h.reduce(state.ResetHits{})
	case "reload":
		return h.reduceTile(a.Tile, state.Reload{ID: a.Tile})
	case "set_source":
		return h.reduceTile(a.Tile, state.SetSource{ID: a.Tile, Raw: a.Value})
	case "edit_begin":
		h.reduce(state.BeginEdit{})
	case "edit_name":
		return h.reduceTile(a.Tile, state.EditName{ID: a.Tile, Name: a.Value})
	case "edit_source":
		return h.reduceTile(a.Tile, state.EditSource{ID: a.Tile, Raw: a.Value})
	case "edit_apply":
		h.reduce(state.ApplyEdits{})
	case "edit_cancel":
		h.reduce(state.CancelEdits{})
	case "timer_toggle":
		h.reduce(state.ToggleTimer{})
	case "timer_start":
		h.reduce(state.StartTimer{})
	case "timer_pause":
		h.reduce(state.PauseTimer{})
	case "timer_reset":
		h.reduce(state.ResetTimer{})
	case "play":
		if a.Tile == state.NoFocus {
			h.ctrl.PlayAll(h.snap.IDs())
			return nil
		}
		return h.command(a.Tile, func() { h.ctrl.Play(a.Tile) })
	case "pause":
		if a.Tile == state.NoFocus {
			h.ctrl.PauseAll(h.snap.IDs())
			return nil
		}
		return h.command(a.Tile, func() { h.ctrl.Pause(a.Tile) })
	case "mute_all":
		h.ctrl.MuteAll(h.snap.IDs())
	case "seek":
		return h.command(a.Tile, func() { h.ctrl.SeekAbsolute(a.Tile, a.Seconds) })
	case "seek_relative":
		return h.command(a.Tile, func() { h.ctrl.SeekRelative(a.Tile, a.Seconds) })
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Action)
	}

	return nil
}

func (h *Hub) command(tile int, fn func()) error {
	if !h.snap.Has(tile) {
		return fmt.Errorf("%w: %d", state.ErrUnknownTile, tile)
	}
	fn()
	return nil
}

func (h *Hub) reduceTile(tile int, a state.Action) error {
	if !h.snap.Has(tile) {
		return fmt.Errorf("%w: %d", state.ErrUnknownTile, tile)
	}
	h.reduce(a)
	return nil
}

// reduce advances the snapshot and publishes the consequences of the change.
func (h *Hub) reduce(a state.Action) {
	next, changed := state.Reduce(h.snap, a)
	if !changed {
		return
	}

	prev := h.snap.Focused()
	h.snap = next

	if focus := next.Focused(); focus != prev {
		h.ctrl.ApplyFocus(next.IDs(), focus)
	}

	h.syncTicker()
	h.broadcast()
}

// syncTicker keeps the one second ticker alive exactly while the timer runs.
func (h *Hub) syncTicker() {
	switch {
	case h.snap.Timer.Running && h.ticker == nil:
		h.ticker = h.clock.NewTicker(time.Second)
	case !h.snap.Timer.Running && h.ticker != nil:
		h.ticker.Stop()
		h.ticker = nil
	}
}

func (h *Hub) broadcast() {
	v := h.view()
	for c := range h.clients {
		if !c.enqueue(v) {
			h.log.Warn().Str("client_id", c.id).Msg("client send buffer full, dropping state frame")
		}
	}
}

func (h *Hub) view() View {
	labels := make(map[int]string, len(h.snap.Tiles))
	embeds := make(map[int]string, len(h.snap.Tiles))
	for _, t := range h.snap.Tiles {
		labels[t.ID] = player.Label(t.ID)
		embeds[t.ID] = state.EmbedURL(t.Source)
	}

	return View{
		Type:     "state",
		Table:    h.table.Name,
		Canvas:   h.table.Canvas,
		Snapshot: h.snap,
		Layout:   layout.Compute(h.snap.Tiles, h.snap.Focused(), h.table),
		Labels:   labels,
		Embeds:   embeds,
		Clock:    h.snap.Timer.Clock(),
		Hits:     h.snap.TotalHits(),
		Mounted:  h.ctrl.Registry().Tiles(),
		Seeks:    h.seekStats(),
	}
}

func (h *Hub) seekStats() SeekStats {
	p50, p99, n := h.ctrl.SeekLatency()

	return SeekStats{
		Count: n,
		P50:   float64(p50) / float64(time.Millisecond),
		P99:   float64(p99) / float64(time.Millisecond),
	}
}
