/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package state

import (
	"testing"
)

func testSnapshot() Snapshot {
	return DefaultRoster().Snapshot()
}

func TestReduce_does_not_mutate_input(t *testing.T) {
	s := testSnapshot()

	next, changed := Reduce(s, AddHit{ID: 2})
	if !changed {
		t.Fatal("AddHit should change the snapshot")
	}
	if s.Tiles[1].Hits != 0 {
		t.Errorf("input snapshot mutated: hits = %d", s.Tiles[1].Hits)
	}
	if next.Tiles[1].Hits != 1 {
		t.Errorf("next hits = %d, want 1", next.Tiles[1].Hits)
	}

	reloaded, _ := Reduce(next, Reload{ID: 3})
	if next.Epoch(3) != 0 {
		t.Errorf("input epochs mutated: %d", next.Epoch(3))
	}
	if reloaded.Epoch(3) != 1 {
		t.Errorf("reloaded epoch = %d, want 1", reloaded.Epoch(3))
	}
}

func TestReduce_version(t *testing.T) {
	s := testSnapshot()

	s1, _ := Reduce(s, ToggleFocus{ID: 1})
	if s1.Version != s.Version+1 {
		t.Errorf("version = %d, want %d", s1.Version, s.Version+1)
	}

	s2, changed := Reduce(s1, AddHit{ID: 99})
	if changed {
		t.Error("AddHit on unknown tile should be a no-op")
	}
	if s2.Version != s1.Version {
		t.Errorf("no-op bumped version to %d", s2.Version)
	}
}

func TestReduce_nil_action(t *testing.T) {
	s := testSnapshot()
	if _, changed := Reduce(s, nil); changed {
		t.Error("nil action should not change state")
	}
}

func TestToggleFocus(t *testing.T) {
	s := testSnapshot()

	s, _ = Reduce(s, ToggleFocus{ID: 2})
	if s.Focus != 2 {
		t.Fatalf("focus = %d, want 2", s.Focus)
	}

	s, _ = Reduce(s, ToggleFocus{ID: 3})
	if s.Focus != 3 {
		t.Fatalf("focus = %d, want 3", s.Focus)
	}

	s, _ = Reduce(s, ToggleFocus{ID: 3})
	if s.Focus != NoFocus {
		t.Fatalf("focus = %d, want none", s.Focus)
	}

	if _, changed := Reduce(s, ToggleFocus{ID: 42}); changed {
		t.Error("focusing an unknown tile should be a no-op")
	}
}

func TestSetFocus_ClearFocus(t *testing.T) {
	s := testSnapshot()

	s, changed := Reduce(s, SetFocus{ID: 4})
	if !changed || s.Focus != 4 {
		t.Fatalf("SetFocus: changed=%v focus=%d", changed, s.Focus)
	}
	if _, changed := Reduce(s, SetFocus{ID: 4}); changed {
		t.Error("SetFocus on the focused tile should be a no-op")
	}

	s, changed = Reduce(s, ClearFocus{})
	if !changed || s.Focus != NoFocus {
		t.Fatalf("ClearFocus: changed=%v focus=%d", changed, s.Focus)
	}
	if _, changed := Reduce(s, ClearFocus{}); changed {
		t.Error("ClearFocus without focus should be a no-op")
	}
}

func TestSnapshot_Focused_dangling(t *testing.T) {
	s := testSnapshot()
	s.Focus = 77
	if got := s.Focused(); got != NoFocus {
		t.Errorf("Focused() = %d, want none for dangling id", got)
	}
}

func TestAddHit_only_target(t *testing.T) {
	for _, focus := range []int{NoFocus, 1, 3} {
		s := testSnapshot()
		s.Focus = focus

		for i := 0; i < 3; i++ {
			s, _ = Reduce(s, AddHit{ID: 3})
		}

		for _, tile := range s.Tiles {
			want := 0
			if tile.ID == 3 {
				want = 3
			}
			if tile.Hits != want {
				t.Errorf("focus=%d tile %d hits = %d, want %d", focus, tile.ID, tile.Hits, want)
			}
		}
		if s.Focus != focus {
			t.Errorf("AddHit changed focus from %d to %d", focus, s.Focus)
		}
	}
}

func TestRemoveHit_floor(t *testing.T) {
	s := testSnapshot()

	if _, changed := Reduce(s, RemoveHit{ID: 1}); changed {
		t.Error("RemoveHit at zero should be a no-op")
	}

	s, _ = Reduce(s, AddHit{ID: 1})
	s, _ = Reduce(s, RemoveHit{ID: 1})
	if s.Tiles[0].Hits != 0 {
		t.Errorf("hits = %d, want 0", s.Tiles[0].Hits)
	}
}

func TestResetHits(t *testing.T) {
	s := testSnapshot()
	s, _ = Reduce(s, AddHit{ID: 1})
	s, _ = Reduce(s, AddHit{ID: 4})

	s, changed := Reduce(s, ResetHits{})
	if !changed {
		t.Fatal("ResetHits should report a change")
	}
	if s.TotalHits() != 0 {
		t.Errorf("total hits = %d, want 0", s.TotalHits())
	}
	if _, changed := Reduce(s, ResetHits{}); changed {
		t.Error("ResetHits with no hits should be a no-op")
	}
}

func TestReload_monotonic(t *testing.T) {
	s := testSnapshot()
	s.Epochs[2] = 5

	const n = 7
	for i := 0; i < n; i++ {
		s, _ = Reduce(s, Reload{ID: 2})
	}

	if got := s.Epoch(2); got != 5+n {
		t.Errorf("epoch = %d, want %d", got, 5+n)
	}
	for _, id := range []int{1, 3, 4} {
		if got := s.Epoch(id); got != 0 {
			t.Errorf("tile %d epoch = %d, want 0", id, got)
		}
	}
}

func TestSetSource(t *testing.T) {
	s := testSnapshot()

	s, changed := Reduce(s, SetSource{ID: 1, Raw: "  https://www.youtube.com/watch?v=abcdefghij1&t=5  "})
	if !changed {
		t.Fatal("SetSource should change the snapshot")
	}
	if s.Tiles[0].Source != "abcdefghij1" {
		t.Errorf("source = %q", s.Tiles[0].Source)
	}
	if s.Epoch(1) != 1 {
		t.Errorf("SetSource should reload: epoch = %d", s.Epoch(1))
	}

	if _, changed := Reduce(s, SetSource{ID: 1, Raw: "   "}); changed {
		t.Error("blank source should be ignored")
	}
	if _, changed := Reduce(s, SetSource{ID: 9, Raw: "abcdefghij1"}); changed {
		t.Error("unknown tile should be ignored")
	}
}

func TestEdits_apply_is_atomic(t *testing.T) {
	s := testSnapshot()

	s, _ = Reduce(s, BeginEdit{})
	s, _ = Reduce(s, EditName{ID: 1, Name: "Renamed"})
	s, _ = Reduce(s, EditSource{ID: 1, Raw: "https://youtu.be/abcdefghij1"})
	s, _ = Reduce(s, EditSource{ID: 2, Raw: "not a url"})
	s, _ = Reduce(s, EditName{ID: 3, Name: "   "})

	if s.Tiles[0].Name == "Renamed" {
		t.Fatal("drafts must not apply before ApplyEdits")
	}

	before := s
	s, changed := Reduce(s, ApplyEdits{})
	if !changed {
		t.Fatal("ApplyEdits should change the snapshot")
	}
	if s.Version != before.Version+1 {
		t.Errorf("ApplyEdits should be a single step, version %d -> %d", before.Version, s.Version)
	}
	if s.Tiles[0].Name != "Renamed" || s.Tiles[0].Source != "abcdefghij1" {
		t.Errorf("tile 1 = %+v", s.Tiles[0])
	}
	if s.Tiles[1].Source != "not a url" {
		t.Errorf("tile 2 source = %q, want verbatim", s.Tiles[1].Source)
	}
	if s.Tiles[2].Name != "Nyr09" {
		t.Errorf("blank draft name applied: %q", s.Tiles[2].Name)
	}
	if s.Epoch(1) != 1 || s.Epoch(2) != 1 || s.Epoch(3) != 0 {
		t.Errorf("epochs = %v", s.Epochs)
	}
	if s.Edits.Open || len(s.Edits.Names) != 0 || len(s.Edits.Sources) != 0 {
		t.Errorf("edit session not closed: %+v", s.Edits)
	}
}

func TestEdits_cancel(t *testing.T) {
	s := testSnapshot()
	orig := s.Tiles[0]

	s, _ = Reduce(s, BeginEdit{})
	s, _ = Reduce(s, EditName{ID: 1, Name: "Nope"})
	s, _ = Reduce(s, CancelEdits{})

	if s.Tiles[0] != orig {
		t.Errorf("cancel applied drafts: %+v", s.Tiles[0])
	}
	if s.Edits.Open {
		t.Error("edit session still open")
	}
	if _, changed := Reduce(s, ApplyEdits{}); changed {
		t.Error("ApplyEdits without a session should be a no-op")
	}
}

func TestEdits_require_session(t *testing.T) {
	s := testSnapshot()
	if _, changed := Reduce(s, EditName{ID: 1, Name: "x"}); changed {
		t.Error("EditName without BeginEdit should be a no-op")
	}
	if _, changed := Reduce(s, EditSource{ID: 1, Raw: "x"}); changed {
		t.Error("EditSource without BeginEdit should be a no-op")
	}
}

func TestTimer(t *testing.T) {
	s := testSnapshot()

	if _, changed := Reduce(s, Tick{}); changed {
		t.Error("Tick on a stopped timer should be a no-op")
	}

	s, _ = Reduce(s, StartTimer{})
	for i := 0; i < 65; i++ {
		s, _ = Reduce(s, Tick{})
	}
	if s.Timer.Elapsed != 65 {
		t.Fatalf("elapsed = %d, want 65", s.Timer.Elapsed)
	}
	if got := s.Timer.Clock(); got != "01:05" {
		t.Errorf("Clock() = %q, want 01:05", got)
	}

	s, _ = Reduce(s, PauseTimer{})
	s, _ = Reduce(s, Tick{})
	if s.Timer.Elapsed != 65 || s.Timer.Running {
		t.Errorf("pause should preserve elapsed: %+v", s.Timer)
	}

	s, _ = Reduce(s, ToggleTimer{})
	if !s.Timer.Running || s.Timer.Elapsed != 65 {
		t.Errorf("resume should preserve elapsed: %+v", s.Timer)
	}

	s, _ = Reduce(s, ResetTimer{})
	if s.Timer != (Timer{}) {
		t.Errorf("reset timer = %+v", s.Timer)
	}
}

func TestTimer_Clock_past_an_hour(t *testing.T) {
	if got := (Timer{Elapsed: 3725}).Clock(); got != "62:05" {
		t.Errorf("Clock() = %q, want 62:05", got)
	}
}
