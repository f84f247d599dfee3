/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package state holds the overlay's data model and the pure reducer that
// advances it. A Snapshot is never modified after it has been handed out;
// every action produces a fresh copy.
package state

import (
	"fmt"
	"maps"
	"slices"
)

// NoFocus is the Focus value of a snapshot with no focused tile.
const NoFocus = 0

// MaxTiles is the largest supported roster.
const MaxTiles = 8

// Tile is one runner's feed and its overlay metadata.
type Tile struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
	Hits   int    `json:"hits" yaml:"-"`
	Slot   string `json:"slot" yaml:"slot"`
}

// Timer is the run timer shown in the overlay's top right corner.
type Timer struct {
	Elapsed int  `json:"elapsed"`
	Running bool `json:"running"`
}

// Clock renders the elapsed time as MM:SS. Minutes keep counting past 59.
func (t Timer) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.Elapsed/60, t.Elapsed%60)
}

// Edits is the draft of an open edit session.
type Edits struct {
	Open    bool           `json:"open"`
	Names   map[int]string `json:"names,omitempty"`
	Sources map[int]string `json:"sources,omitempty"`
}

type Commentator struct {
	Role string `json:"role" yaml:"role"`
	Name string `json:"name" yaml:"name"`
}

type Sponsor struct {
	Name    string `json:"name" yaml:"name"`
	LogoURL string `json:"logo_url,omitempty" yaml:"logo"`
}

// Snapshot is the complete operator state at one point in time.
type Snapshot struct {
	Version      uint64        `json:"version"`
	Title        string        `json:"title"`
	Tiles        []Tile        `json:"tiles"`
	Focus        int           `json:"focus"`
	Epochs       map[int]int   `json:"epochs"`
	Timer        Timer         `json:"timer"`
	Edits        Edits         `json:"edits"`
	Commentators []Commentator `json:"commentators,omitempty"`
	Sponsor      Sponsor       `json:"sponsor"`
}

// New builds the initial snapshot for a roster. Every tile starts at epoch zero.
func New(title string, tiles []Tile) Snapshot {
	s := Snapshot{
		Title:  title,
		Tiles:  slices.Clone(tiles),
		Epochs: make(map[int]int, len(tiles)),
	}
	for _, t := range tiles {
		s.Epochs[t.ID] = 0
	}
	return s
}

// Tile returns the tile with the given id.
func (s Snapshot) Tile(id int) (Tile, bool) {
	i := s.index(id)
	if i < 0 {
		return Tile{}, false
	}
	return s.Tiles[i], true
}

// Has reports whether id names a tile of the roster.
func (s Snapshot) Has(id int) bool {
	return s.index(id) >= 0
}

// IDs returns the tile ids in roster order.
func (s Snapshot) IDs() []int {
	ids := make([]int, len(s.Tiles))
	for i, t := range s.Tiles {
		ids[i] = t.ID
	}
	return ids
}

// Focused returns the focused tile id, treating a dangling id as no focus.
func (s Snapshot) Focused() int {
	if s.Focus == NoFocus || !s.Has(s.Focus) {
		return NoFocus
	}
	return s.Focus
}

// Epoch returns the reload counter of a tile.
func (s Snapshot) Epoch(id int) int {
	return s.Epochs[id]
}

// TotalHits sums the hit counters of every tile.
func (s Snapshot) TotalHits() int {
	n := 0
	for _, t := range s.Tiles {
		n += t.Hits
	}
	return n
}

func (s Snapshot) index(id int) int {
	if id == NoFocus {
		return -1
	}
	return slices.IndexFunc(s.Tiles, func(t Tile) bool { return t.ID == id })
}

// clone copies every reference-typed field so the result can be changed
// without touching s.
func (s Snapshot) clone() Snapshot {
	c := s
	c.Tiles = slices.Clone(s.Tiles)
	c.Epochs = maps.Clone(s.Epochs)
	if c.Epochs == nil {
		c.Epochs = make(map[int]int)
	}
	c.Edits.Names = maps.Clone(s.Edits.Names)
	c.Edits.Sources = maps.Clone(s.Edits.Sources)
	c.Commentators = slices.Clone(s.Commentators)
	return c
}
