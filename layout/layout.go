/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package layout turns a roster and its focus into tile geometry.
//
// With nothing focused every tile sits in the fixed rectangle of its slot.
// With a tile focused that tile takes the table's focus region and the rest
// shrink into thumbnails, keeping their roster order. Compute is a pure
// function; the renderer animates between successive results.
package layout

import (
	"strings"

	"github.com/Seednode/hitbox/state"
)

// Stacking tiers.
const (
	ZBase     = 10
	ZElevated = 15
)

// Accent colors.
const (
	AccentLeft  = "#ef4444"
	AccentRight = "#ffffff"
)

// Placement is where and how one tile is drawn.
type Placement struct {
	TileID  int    `json:"tile"`
	Slot    string `json:"slot"`
	Rect    Rect   `json:"rect"`
	Z       int    `json:"z"`
	Focused bool   `json:"focused"`
	// Thumb is the tile's index among the thumbnails, or -1.
	Thumb  int    `json:"thumb"`
	Accent string `json:"accent"`
}

// Accent returns the border color of a slot.
func Accent(slot string) string {
	if strings.Contains(slot, "left") {
		return AccentLeft
	}
	return AccentRight
}

// Compute lays out tiles under focus. A focus id that is not in the roster
// is treated as no focus.
func Compute(tiles []state.Tile, focus int, t Table) []Placement {
	out := make([]Placement, len(tiles))

	if !contains(tiles, focus) {
		for i, tile := range tiles {
			out[i] = Placement{
				TileID: tile.ID,
				Slot:   tile.Slot,
				Rect:   t.Slots[tile.Slot],
				Z:      ZBase,
				Thumb:  -1,
				Accent: Accent(tile.Slot),
			}
		}
		return out
	}

	others := len(tiles) - 1
	thumb := 0
	for i, tile := range tiles {
		p := Placement{
			TileID: tile.ID,
			Slot:   tile.Slot,
			Accent: Accent(tile.Slot),
		}
		if tile.ID == focus {
			p.Rect = t.Focus
			p.Z = ZElevated
			p.Focused = true
			p.Thumb = -1
		} else {
			p.Rect = t.Thumb(others, thumb)
			p.Z = ZBase
			p.Thumb = thumb
			thumb++
		}
		out[i] = p
	}

	return out
}

// Move pairs a tile's previous and next rectangle.
type Move struct {
	TileID int  `json:"tile"`
	From   Rect `json:"from"`
	To     Rect `json:"to"`
}

// Moves matches two layouts by tile id. Tiles missing from either side are
// skipped.
func Moves(from, to []Placement) []Move {
	prev := make(map[int]Rect, len(from))
	for _, p := range from {
		prev[p.TileID] = p.Rect
	}

	moves := make([]Move, 0, len(to))
	for _, p := range to {
		r, ok := prev[p.TileID]
		if !ok {
			continue
		}
		moves = append(moves, Move{TileID: p.TileID, From: r, To: p.Rect})
	}

	return moves
}

// At returns the rectangle of m at animation progress t.
func (m Move) At(t float64) Rect {
	return Lerp(m.From, m.To, t)
}

func contains(tiles []state.Tile, id int) bool {
	if id == state.NoFocus {
		return false
	}
	for _, t := range tiles {
		if t.ID == id {
			return true
		}
	}
	return false
}
