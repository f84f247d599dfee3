/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package state

import (
	"strings"
)

// Action is one operator intent. Actions only ever see a private copy of the
// snapshot, so a partially applied action is never observable.
type Action interface {
	// apply mutates the copy and reports whether anything changed.
	apply(s *Snapshot) bool
}

// Reduce applies a to s and returns the resulting snapshot. The second
// result is false when the action was a no-op, in which case s is returned
// as is.
func Reduce(s Snapshot, a Action) (Snapshot, bool) {
	if a == nil {
		return s, false
	}

	next := s.clone()
	if !a.apply(&next) {
		return s, false
	}
	next.Version++

	return next, true
}

// ToggleFocus focuses a tile, or clears focus if it is already focused.
type ToggleFocus struct{ ID int }

func (a ToggleFocus) apply(s *Snapshot) bool {
	if !s.Has(a.ID) {
		return false
	}
	if s.Focus == a.ID {
		s.Focus = NoFocus
	} else {
		s.Focus = a.ID
	}
	return true
}

type SetFocus struct{ ID int }

func (a SetFocus) apply(s *Snapshot) bool {
	if !s.Has(a.ID) || s.Focus == a.ID {
		return false
	}
	s.Focus = a.ID
	return true
}

type ClearFocus struct{}

func (ClearFocus) apply(s *Snapshot) bool {
	if s.Focus == NoFocus {
		return false
	}
	s.Focus = NoFocus
	return true
}

// AddHit increments one tile's hit counter. Focus plays no part.
type AddHit struct{ ID int }

func (a AddHit) apply(s *Snapshot) bool {
	i := s.index(a.ID)
	if i < 0 {
		return false
	}
	s.Tiles[i].Hits++
	return true
}

// RemoveHit undoes a mistaken hit. Counters never drop below zero.
type RemoveHit struct{ ID int }

func (a RemoveHit) apply(s *Snapshot) bool {
	i := s.index(a.ID)
	if i < 0 || s.Tiles[i].Hits == 0 {
		return false
	}
	s.Tiles[i].Hits--
	return true
}

type ResetHits struct{}

func (ResetHits) apply(s *Snapshot) bool {
	changed := false
	for i := range s.Tiles {
		if s.Tiles[i].Hits != 0 {
			s.Tiles[i].Hits = 0
			changed = true
		}
	}
	return changed
}

// Reload bumps a tile's epoch so its player surface is torn down and
// recreated.
type Reload struct{ ID int }

func (a Reload) apply(s *Snapshot) bool {
	if !s.Has(a.ID) {
		return false
	}
	s.Epochs[a.ID]++
	return true
}

// SetSource points a tile at a new video and reloads it.
type SetSource struct {
	ID  int
	Raw string
}

func (a SetSource) apply(s *Snapshot) bool {
	return setSource(s, a.ID, a.Raw)
}

func setSource(s *Snapshot, id int, raw string) bool {
	raw = strings.TrimSpace(raw)
	i := s.index(id)
	if i < 0 || raw == "" {
		return false
	}
	s.Tiles[i].Source = ParseSourceID(raw)
	s.Epochs[id]++
	return true
}

// BeginEdit opens an edit session with empty drafts.
type BeginEdit struct{}

func (BeginEdit) apply(s *Snapshot) bool {
	if s.Edits.Open {
		return false
	}
	s.Edits = Edits{Open: true, Names: map[int]string{}, Sources: map[int]string{}}
	return true
}

type EditName struct {
	ID   int
	Name string
}

func (a EditName) apply(s *Snapshot) bool {
	if !s.Edits.Open || !s.Has(a.ID) {
		return false
	}
	if s.Edits.Names == nil {
		s.Edits.Names = map[int]string{}
	}
	s.Edits.Names[a.ID] = a.Name
	return true
}

type EditSource struct {
	ID  int
	Raw string
}

func (a EditSource) apply(s *Snapshot) bool {
	if !s.Edits.Open || !s.Has(a.ID) {
		return false
	}
	if s.Edits.Sources == nil {
		s.Edits.Sources = map[int]string{}
	}
	s.Edits.Sources[a.ID] = a.Raw
	return true
}

// ApplyEdits commits every non-blank draft at once and closes the session.
// Changed sources reload their tiles.
type ApplyEdits struct{}

func (ApplyEdits) apply(s *Snapshot) bool {
	if !s.Edits.Open {
		return false
	}
	for id, name := range s.Edits.Names {
		name = strings.TrimSpace(name)
		if i := s.index(id); i >= 0 && name != "" {
			s.Tiles[i].Name = name
		}
	}
	for id, raw := range s.Edits.Sources {
		setSource(s, id, raw)
	}
	s.Edits = Edits{}
	return true
}

// CancelEdits discards the drafts.
type CancelEdits struct{}

func (CancelEdits) apply(s *Snapshot) bool {
	if !s.Edits.Open {
		return false
	}
	s.Edits = Edits{}
	return true
}

type StartTimer struct{}

func (StartTimer) apply(s *Snapshot) bool {
	if s.Timer.Running {
		return false
	}
	s.Timer.Running = true
	return true
}

type PauseTimer struct{}

func (PauseTimer) apply(s *Snapshot) bool {
	if !s.Timer.Running {
		return false
	}
	s.Timer.Running = false
	return true
}

type ToggleTimer struct{}

func (ToggleTimer) apply(s *Snapshot) bool {
	s.Timer.Running = !s.Timer.Running
	return true
}

// ResetTimer stops the timer and zeroes it.
type ResetTimer struct{}

func (ResetTimer) apply(s *Snapshot) bool {
	if s.Timer == (Timer{}) {
		return false
	}
	s.Timer = Timer{}
	return true
}

// Tick advances a running timer by one second.
type Tick struct{}

func (Tick) apply(s *Snapshot) bool {
	if !s.Timer.Running {
		return false
	}
	s.Timer.Elapsed++
	return true
}
