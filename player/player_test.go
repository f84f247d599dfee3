/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type sent struct {
	tile      int
	epoch     int
	cmd       Command
	requestID string
}

type fakeSurface struct {
	key string

	mu   sync.Mutex
	sent []sent
}

func (f *fakeSurface) Key() string { return f.key }

func (f *fakeSurface) Send(tile, epoch int, cmd Command, requestID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{tile, epoch, cmd, requestID})
	return true
}

func (f *fakeSurface) commands(tile int, fn string) []sent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sent
	for _, s := range f.sent {
		if s.tile == tile && s.cmd.Func == fn {
			out = append(out, s)
		}
	}
	return out
}

type countingRecorder struct {
	mu       sync.Mutex
	commands map[string]int
	seeks    map[Outcome]int
}

func (r *countingRecorder) PlayerCommand(fn string, delivered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if delivered {
		r.commands[fn]++
	}
}

func (r *countingRecorder) SeekResolved(outcome Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeks[outcome]++
}

func setup(t *testing.T, tiles ...int) (*Controller, *fakeSurface, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	surface := &fakeSurface{key: "overlay-1"}
	reg := NewRegistry()
	for _, tile := range tiles {
		reg.Mount(tile, 0, surface)
	}

	return NewController(reg, Options{Clock: clock}), surface, clock
}

func wait(t *testing.T, s *Seek) {
	t.Helper()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatalf("seek %s never resolved", s.ID)
	}
}

func TestCommand_Encode(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Mute(), `{"event":"command","func":"mute","args":""}`},
		{UnMute(), `{"event":"command","func":"unMute","args":""}`},
		{PlayVideo(), `{"event":"command","func":"playVideo","args":""}`},
		{PauseVideo(), `{"event":"command","func":"pauseVideo","args":""}`},
		{GetCurrentTime(), `{"event":"command","func":"getCurrentTime","args":""}`},
		{SeekTo(12.5), `{"event":"command","func":"seekTo","args":[12.5,true]}`},
	}
	for _, tt := range tests {
		if got := tt.cmd.Encode(); got != tt.want {
			t.Errorf("Encode() = %s, want %s", got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label(3); got != "Player 3 Stream" {
		t.Errorf("Label(3) = %q", got)
	}
}

func TestParseCurrentTime(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    float64
		ok      bool
		wantErr bool
	}{
		{"info delivery", `{"event":"infoDelivery","info":{"currentTime":42.5}}`, 42.5, true, false},
		{"zero", `{"event":"infoDelivery","info":{"currentTime":0}}`, 0, true, false},
		{"other info", `{"event":"infoDelivery","info":{"volume":100}}`, 0, false, false},
		{"other event", `{"event":"onStateChange","info":1}`, 0, false, false},
		{"initial delivery", `{"event":"initialDelivery","info":{"currentTime":3}}`, 0, false, false},
		{"not json", `not json`, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseCurrentTime([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseCurrentTime = %g, %v; want %g, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRegistry_stale_unmount(t *testing.T) {
	reg := NewRegistry()
	s := &fakeSurface{key: "a"}

	reg.Mount(1, 0, s)
	reg.Mount(1, 1, s)

	if reg.Unmount(1, 0, "a") {
		t.Error("unmount of epoch 0 removed the epoch 1 mount")
	}
	if !reg.Ready(1) {
		t.Fatal("tile 1 should still be mounted")
	}
	if reg.Mount(1, 0, s) {
		t.Error("mount of an older epoch should be ignored")
	}
	if !reg.Unmount(1, 1, "a") || reg.Ready(1) {
		t.Error("unmount of the current epoch should remove the mount")
	}
}

func TestRegistry_Drop(t *testing.T) {
	reg := NewRegistry()
	a := &fakeSurface{key: "a"}
	b := &fakeSurface{key: "b"}

	reg.Mount(1, 0, a)
	reg.Mount(2, 0, a)
	reg.Mount(2, 0, b)

	if n := reg.Drop("a"); n != 2 {
		t.Errorf("Drop = %d, want 2", n)
	}
	if got := reg.Tiles(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Tiles() = %v, want [2]", got)
	}
}

func TestController_ApplyFocus(t *testing.T) {
	c, surface, _ := setup(t, 1, 2, 3, 4)
	ids := []int{1, 2, 3, 4}

	c.ApplyFocus(ids, 2)

	for _, tile := range ids {
		unmutes := len(surface.commands(tile, FuncUnMute))
		mutes := len(surface.commands(tile, FuncMute))
		if tile == 2 && (unmutes != 1 || mutes != 0) {
			t.Errorf("focused tile: %d unmute, %d mute", unmutes, mutes)
		}
		if tile != 2 && (unmutes != 0 || mutes != 1) {
			t.Errorf("tile %d: %d unmute, %d mute", tile, unmutes, mutes)
		}
	}
}

func TestController_ApplyFocus_none(t *testing.T) {
	c, surface, _ := setup(t, 1, 2)

	c.ApplyFocus([]int{1, 2}, 0)

	for _, tile := range []int{1, 2} {
		if n := len(surface.commands(tile, FuncMute)); n != 1 {
			t.Errorf("tile %d: %d mutes, want 1", tile, n)
		}
		if n := len(surface.commands(tile, FuncUnMute)); n != 0 {
			t.Errorf("tile %d: %d unmutes, want 0", tile, n)
		}
	}
}

func TestController_missing_surface_is_noop(t *testing.T) {
	rec := &countingRecorder{commands: map[string]int{}, seeks: map[Outcome]int{}}
	c := NewController(NewRegistry(), Options{Clock: clockwork.NewFakeClock(), Recorder: rec})

	if c.Play(1) || c.SetMute(1, true) || c.SeekAbsolute(1, 10) {
		t.Error("commands to an unmounted tile should not be delivered")
	}
	c.MuteAll([]int{1, 2, 3})
	if len(rec.commands) != 0 {
		t.Errorf("recorded deliveries: %v", rec.commands)
	}
}

func TestController_SeekRelative_applied(t *testing.T) {
	c, surface, _ := setup(t, 1)

	seek := c.SeekRelative(1, 10)

	asks := surface.commands(1, FuncGetCurrentTime)
	if len(asks) != 1 || asks[0].requestID != seek.ID {
		t.Fatalf("getCurrentTime requests = %+v", asks)
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}

	if !c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":100}}`)) {
		t.Fatal("Deliver did not resolve the seek")
	}
	wait(t, seek)

	if seek.Outcome() != Applied || seek.Target() != 110 {
		t.Errorf("outcome %s target %g", seek.Outcome(), seek.Target())
	}
	seeks := surface.commands(1, FuncSeekTo)
	if len(seeks) != 1 {
		t.Fatalf("seekTo count = %d, want 1", len(seeks))
	}
	if got := seeks[0].cmd.Encode(); got != SeekTo(110).Encode() {
		t.Errorf("seekTo = %s", got)
	}

	if c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":200}}`)) {
		t.Error("second reply should be ignored")
	}
	if n := len(surface.commands(1, FuncSeekTo)); n != 1 {
		t.Errorf("seekTo count after duplicate reply = %d", n)
	}

	if _, _, n := c.SeekLatency(); n != 1 {
		t.Errorf("latency samples = %d, want 1", n)
	}
}

func TestController_SeekRelative_backwards_clamps(t *testing.T) {
	c, surface, _ := setup(t, 1)

	seek := c.SeekRelative(1, -30)
	c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":12}}`))
	wait(t, seek)

	if seek.Target() != 0 {
		t.Errorf("target = %g, want 0", seek.Target())
	}
	if n := len(surface.commands(1, FuncSeekTo)); n != 1 {
		t.Errorf("seekTo count = %d", n)
	}
}

func TestController_SeekAbsolute_passes_seconds_through(t *testing.T) {
	c, surface, _ := setup(t, 1)

	for _, seconds := range []float64{-5, 0, 3600.25} {
		if !c.SeekAbsolute(1, seconds) {
			t.Fatalf("SeekAbsolute(1, %g) not delivered", seconds)
		}
	}

	got := surface.commands(1, FuncSeekTo)
	if len(got) != 3 {
		t.Fatalf("seekTo count = %d, want 3", len(got))
	}
	for i, want := range []float64{-5, 0, 3600.25} {
		args := got[i].cmd.Args.([]any)
		if args[0] != want || args[1] != true {
			t.Errorf("seekTo %d args = %v, want [%g true]", i, args, want)
		}
	}
}

func TestController_SeekRelative_timeout(t *testing.T) {
	c, surface, clock := setup(t, 1)

	seek := c.SeekRelative(1, 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("timer never armed: %v", err)
	}

	clock.Advance(DefaultSeekTimeout - time.Millisecond)
	if seek.Outcome() != Waiting {
		t.Fatalf("resolved early: %s", seek.Outcome())
	}

	clock.Advance(time.Millisecond)
	wait(t, seek)

	if seek.Outcome() != TimedOut {
		t.Errorf("outcome = %s, want timeout", seek.Outcome())
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}

	if c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":100}}`)) {
		t.Error("late reply should be ignored")
	}
	if n := len(surface.commands(1, FuncSeekTo)); n != 0 {
		t.Errorf("seekTo issued after timeout: %d", n)
	}
}

func TestController_Deliver_untrusted_origin(t *testing.T) {
	c, surface, _ := setup(t, 1)

	seek := c.SeekRelative(1, 10)
	data := []byte(`{"event":"infoDelivery","info":{"currentTime":100}}`)

	if c.Deliver(1, seek.ID, "https://evil.example", data) {
		t.Error("untrusted origin resolved the seek")
	}
	if seek.Outcome() != Waiting || c.Pending() != 1 {
		t.Errorf("untrusted message changed state: %s pending=%d", seek.Outcome(), c.Pending())
	}
	if n := len(surface.commands(1, FuncSeekTo)); n != 0 {
		t.Errorf("seekTo issued for untrusted origin")
	}

	seek.Cancel()
	wait(t, seek)
	if seek.Outcome() != Cancelled {
		t.Errorf("outcome = %s, want cancelled", seek.Outcome())
	}
}

func TestController_Deliver_malformed(t *testing.T) {
	c, surface, _ := setup(t, 1)

	seek := c.SeekRelative(1, 10)
	if !c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":`)) {
		t.Fatal("malformed reply should abandon the seek")
	}
	wait(t, seek)

	if seek.Outcome() != Malformed || c.Pending() != 0 {
		t.Errorf("outcome %s pending %d", seek.Outcome(), c.Pending())
	}
	if n := len(surface.commands(1, FuncSeekTo)); n != 0 {
		t.Errorf("seekTo issued for malformed reply")
	}
}

func TestController_Deliver_ignores_other_shapes(t *testing.T) {
	c, _, _ := setup(t, 1)

	seek := c.SeekRelative(1, 10)
	if c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":"onStateChange","info":1}`)) {
		t.Fatal("state change resolved the seek")
	}
	if c.Deliver(2, seek.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":5}}`)) {
		t.Fatal("reply from another tile resolved the seek")
	}
	if !c.Deliver(1, seek.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":5}}`)) {
		t.Fatal("valid reply ignored")
	}
	wait(t, seek)
	if seek.Target() != 15 {
		t.Errorf("target = %g", seek.Target())
	}
}

func TestController_concurrent_seeks(t *testing.T) {
	c, surface, _ := setup(t, 1)

	a := c.SeekRelative(1, 10)
	b := c.SeekRelative(1, -10)
	if a.ID == b.ID {
		t.Fatal("request ids collide")
	}

	c.Deliver(1, b.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":50}}`))
	wait(t, b)
	if a.Outcome() != Waiting {
		t.Errorf("reply for b resolved a: %s", a.Outcome())
	}

	c.Deliver(1, a.ID, TrustedOrigin, []byte(`{"event":"infoDelivery","info":{"currentTime":60}}`))
	wait(t, a)

	if a.Target() != 70 || b.Target() != 40 {
		t.Errorf("targets a=%g b=%g", a.Target(), b.Target())
	}
	if n := len(surface.commands(1, FuncSeekTo)); n != 2 {
		t.Errorf("seekTo count = %d, want 2", n)
	}
}

func TestController_SeekRelative_no_surface(t *testing.T) {
	rec := &countingRecorder{commands: map[string]int{}, seeks: map[Outcome]int{}}
	c := NewController(NewRegistry(), Options{Clock: clockwork.NewFakeClock(), Recorder: rec})

	seek := c.SeekRelative(9, 10)
	wait(t, seek)

	if seek.Outcome() != NoSurface || c.Pending() != 0 {
		t.Errorf("outcome %s pending %d", seek.Outcome(), c.Pending())
	}
	if rec.seeks[NoSurface] != 1 {
		t.Errorf("recorded outcomes: %v", rec.seeks)
	}
}

func TestController_Close(t *testing.T) {
	c, _, _ := setup(t, 1, 2)

	a := c.SeekRelative(1, 10)
	b := c.SeekRelative(2, 10)
	c.Close()
	wait(t, a)
	wait(t, b)

	if a.Outcome() != Cancelled || b.Outcome() != Cancelled || c.Pending() != 0 {
		t.Errorf("outcomes %s %s pending %d", a.Outcome(), b.Outcome(), c.Pending())
	}
}
