/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package state

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrRosterSize    = errors.New("roster must hold between 1 and 8 tiles")
	ErrInvalidTileID = errors.New("tile ids must be positive")
	ErrDuplicateTile = errors.New("duplicate tile id")
	ErrUnknownTile   = errors.New("unknown tile")
	ErrMissingSlot   = errors.New("tile has no slot")
)

// Roster is the startup configuration of an overlay, as read from YAML.
type Roster struct {
	Title        string        `yaml:"title"`
	Layout       string        `yaml:"layout"`
	Commentators []Commentator `yaml:"commentators"`
	Sponsor      Sponsor       `yaml:"sponsor"`
	Tiles        []Tile        `yaml:"tiles"`
}

// DefaultRoster is the four runner bracket used when no roster file is given.
func DefaultRoster() Roster {
	return Roster{
		Title:  "Hitless Tournament",
		Layout: "quad",
		Commentators: []Commentator{
			{Role: "Commentator 1", Name: "AgungSP"},
			{Role: "Commentator 2", Name: "Underated"},
		},
		Sponsor: Sponsor{
			Name:    "Hitless ID",
			LogoURL: "https://raw.githubusercontent.com/Putra3340/MediaSource/refs/heads/main/Hitless_ID.png",
		},
		Tiles: []Tile{
			{ID: 1, Name: "FedoRas", Source: "ZXNz3fMDHbk", Slot: "top-left"},
			{ID: 2, Name: "Firman Gs", Source: "q1WVgSn-nDU", Slot: "top-right"},
			{ID: 3, Name: "Nyr09", Source: "R9dnD8k87BI", Slot: "bottom-left"},
			{ID: 4, Name: "Seppp", Source: "5jihcQ1pDHA", Slot: "bottom-right"},
		},
	}
}

// LoadRoster reads a roster file. An empty path yields DefaultRoster.
func LoadRoster(path string) (Roster, error) {
	if path == "" {
		return DefaultRoster(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to read roster file: %w", err)
	}

	r, err := ParseRoster(data)
	if err != nil {
		return Roster{}, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}

	return r, nil
}

// ParseRoster decodes and validates a YAML roster. Unknown keys are rejected
// so typos surface at startup instead of silently falling back.
func ParseRoster(data []byte) (Roster, error) {
	var r Roster

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return Roster{}, err
	}

	for i := range r.Tiles {
		r.Tiles[i].Source = ParseSourceID(r.Tiles[i].Source)
	}

	if err := r.Validate(); err != nil {
		return Roster{}, err
	}

	return r, nil
}

// Validate checks the roster's structural invariants. Slot names are
// checked against a layout table by the layout package.
func (r Roster) Validate() error {
	if len(r.Tiles) == 0 || len(r.Tiles) > MaxTiles {
		return fmt.Errorf("%w: got %d", ErrRosterSize, len(r.Tiles))
	}

	seen := make(map[int]bool, len(r.Tiles))
	for _, t := range r.Tiles {
		if t.ID <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidTileID, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateTile, t.ID)
		}
		if t.Slot == "" {
			return fmt.Errorf("%w: %d", ErrMissingSlot, t.ID)
		}
		seen[t.ID] = true
	}

	return nil
}

// Slots lists the slot names used by the roster, in roster order.
func (r Roster) Slots() []string {
	slots := make([]string, len(r.Tiles))
	for i, t := range r.Tiles {
		slots[i] = t.Slot
	}
	return slots
}

// Snapshot builds the initial state for the roster.
func (r Roster) Snapshot() Snapshot {
	s := New(r.Title, r.Tiles)
	s.Commentators = append([]Commentator(nil), r.Commentators...)
	s.Sponsor = r.Sponsor
	return s
}
