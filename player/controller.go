/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package player

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/influxdata/tdigest"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultSeekTimeout bounds how long a relative seek waits for the player
// to report its position.
const DefaultSeekTimeout = 2 * time.Second

// Clock is the subset of clockwork the controller needs.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	NewTimer(d time.Duration) clockwork.Timer
}

// Recorder receives command and seek outcomes, e.g. for metrics.
type Recorder interface {
	PlayerCommand(fn string, delivered bool)
	SeekResolved(outcome Outcome, elapsed time.Duration)
}

type Options struct {
	Clock         Clock
	SeekTimeout   time.Duration
	TrustedOrigin string
	Logger        *zerolog.Logger
	Recorder      Recorder
}

// Controller issues playback commands to mounted player surfaces and
// correlates their replies.
type Controller struct {
	reg      *Registry
	clock    Clock
	timeout  time.Duration
	origin   string
	log      zerolog.Logger
	recorder Recorder

	mu      sync.Mutex
	pending map[string]*Seek
	latency *tdigest.TDigest
}

func NewController(reg *Registry, opts Options) *Controller {
	c := &Controller{
		reg:      reg,
		clock:    opts.Clock,
		timeout:  opts.SeekTimeout,
		origin:   opts.TrustedOrigin,
		recorder: opts.Recorder,
		pending:  make(map[string]*Seek),
		latency:  tdigest.NewWithCompression(100),
	}

	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.timeout <= 0 {
		c.timeout = DefaultSeekTimeout
	}
	if c.origin == "" {
		c.origin = TrustedOrigin
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "player").Logger()
	} else {
		c.log = zerolog.Nop()
	}

	return c
}

func (c *Controller) Registry() *Registry {
	return c.reg
}

func (c *Controller) send(tile int, cmd Command, requestID string) bool {
	ok := c.reg.send(tile, cmd, requestID)
	if !ok {
		c.log.Debug().Int("tile", tile).Str("func", cmd.Func).Msg("no surface for command, dropped")
	}
	if c.recorder != nil {
		c.recorder.PlayerCommand(cmd.Func, ok)
	}

	return ok
}

// SetMute mutes or unmutes one tile. Missing surfaces are a no-op.
func (c *Controller) SetMute(tile int, muted bool) bool {
	if muted {
		return c.send(tile, Mute(), "")
	}
	return c.send(tile, UnMute(), "")
}

func (c *Controller) Play(tile int) bool {
	return c.send(tile, PlayVideo(), "")
}

func (c *Controller) Pause(tile int) bool {
	return c.send(tile, PauseVideo(), "")
}

func (c *Controller) SeekAbsolute(tile int, seconds float64) bool {
	return c.send(tile, SeekTo(seconds), "")
}

// MuteAll sends exactly one mute to every tile.
func (c *Controller) MuteAll(tiles []int) {
	for _, tile := range tiles {
		c.send(tile, Mute(), "")
	}
}

// PlayAll and PauseAll broadcast to every tile.
func (c *Controller) PlayAll(tiles []int) {
	for _, tile := range tiles {
		c.send(tile, PlayVideo(), "")
	}
}

func (c *Controller) PauseAll(tiles []int) {
	for _, tile := range tiles {
		c.send(tile, PauseVideo(), "")
	}
}

// ApplyFocus unmutes focus and mutes every other tile, one command each.
// A focus outside tiles mutes everything.
func (c *Controller) ApplyFocus(tiles []int, focus int) {
	for _, tile := range tiles {
		c.SetMute(tile, tile != focus)
	}
}

// SyncMute brings a freshly mounted surface in line with the current focus.
func (c *Controller) SyncMute(tile, focus int) bool {
	return c.SetMute(tile, tile != focus)
}

// Pending is the number of relative seeks awaiting a reply.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// SeekRelative asks tile for its position and, once it answers, seeks by
// delta seconds from there. The returned Seek resolves exactly once.
func (c *Controller) SeekRelative(tile int, delta float64) *Seek {
	s := &Seek{
		ID:      uuid.NewString(),
		Tile:    tile,
		Delta:   delta,
		ctrl:    c,
		started: c.clock.Now(),
		done:    make(chan struct{}),
	}

	if !c.reg.Ready(tile) {
		c.finish(s, NoSurface, 0)
		return s
	}

	// Registered before the request goes out so a fast reply is not lost.
	c.mu.Lock()
	c.pending[s.ID] = s
	c.mu.Unlock()

	timer := c.clock.NewTimer(c.timeout)
	go func() {
		select {
		case <-timer.Chan():
			c.finish(s, TimedOut, 0)
		case <-s.done:
			stopAndDrainTimer(timer)
		}
	}()

	if !c.send(tile, GetCurrentTime(), s.ID) {
		c.finish(s, NoSurface, 0)
	}

	return s
}

// Deliver hands a message relayed from tile's player to the seek waiting on
// requestID. It reports whether the message resolved that seek.
func (c *Controller) Deliver(tile int, requestID, origin string, data []byte) bool {
	if origin != c.origin {
		c.log.Debug().Int("tile", tile).Str("origin", origin).Msg("ignoring player message from untrusted origin")
		return false
	}

	c.mu.Lock()
	s, ok := c.pending[requestID]
	c.mu.Unlock()
	if !ok || s.Tile != tile {
		return false
	}

	current, ok, err := ParseCurrentTime(data)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Int("tile", tile).Str("request_id", requestID).Msg("malformed player message, abandoning seek")
		return c.finish(s, Malformed, 0)
	case !ok:
		return false
	}

	return c.finish(s, Applied, current)
}

func (c *Controller) finish(s *Seek, outcome Outcome, current float64) bool {
	won := false

	s.once.Do(func() {
		won = true

		c.mu.Lock()
		delete(c.pending, s.ID)
		elapsed := c.clock.Since(s.started)
		if outcome == Applied {
			c.latency.Add(float64(elapsed), 1)
		}
		c.mu.Unlock()

		s.outcome = outcome
		if outcome == Applied {
			s.target = max(current+s.Delta, 0)
			c.send(s.Tile, SeekTo(s.target), "")
		}

		c.log.Debug().
			Int("tile", s.Tile).
			Str("request_id", s.ID).
			Float64("delta", s.Delta).
			Stringer("outcome", outcome).
			Dur("elapsed", elapsed).
			Msg("relative seek resolved")

		if c.recorder != nil {
			c.recorder.SeekResolved(outcome, elapsed)
		}

		close(s.done)
	})

	return won
}

// SeekLatency reports round trip quantiles of applied seeks.
func (c *Controller) SeekLatency() (p50, p99 time.Duration, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n = int(c.latency.Count())
	if n == 0 {
		return 0, 0, 0
	}

	return time.Duration(c.latency.Quantile(0.50)), time.Duration(c.latency.Quantile(0.99)), n
}

// Close abandons every pending seek.
func (c *Controller) Close() {
	c.mu.Lock()
	seeks := make([]*Seek, 0, len(c.pending))
	for _, s := range c.pending {
		seeks = append(seeks, s)
	}
	c.mu.Unlock()

	for _, s := range seeks {
		c.finish(s, Cancelled, 0)
	}
}

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
