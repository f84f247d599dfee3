/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package layout

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Seednode/hitbox/state"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSlot  = errors.New("slot not defined by layout table")
	ErrOverlap      = errors.New("layout regions overlap")
	ErrOutOfCanvas  = errors.New("layout region outside canvas")
	ErrBadCells     = errors.New("invalid thumbnail cell table")
	ErrBadThumbs    = errors.New("invalid thumbnail geometry")
	ErrUnknownTable = errors.New("unknown layout table")
)

// Cell addresses one cell of the two column thumbnail grid.
type Cell struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

// Table is the configuration the engine lays tiles out with. The engine
// itself knows nothing about roster sizes; everything size specific lives
// here.
type Table struct {
	Name   string          `json:"name" yaml:"name"`
	Canvas Size            `json:"canvas" yaml:"canvas"`
	Slots  map[string]Rect `json:"slots" yaml:"slots"`

	// Focus is the dominant region of the focused tile.
	Focus Rect `json:"focus" yaml:"focus"`
	// Thumbs is the region the remaining tiles shrink into.
	Thumbs         Rect    `json:"thumbs" yaml:"thumbs"`
	ThumbMaxHeight float64 `json:"thumb_max_height" yaml:"thumb_max_height"`
	Gap            float64 `json:"gap" yaml:"gap"`

	// Above SingleColumnMax thumbnails the region is split into two columns,
	// placed by Cells when a table for that count exists and row major
	// otherwise.
	SingleColumnMax int            `json:"single_column_max" yaml:"single_column_max"`
	Cells           map[int][]Cell `json:"cells,omitempty" yaml:"cells"`
}

const margin = 16

// Shared focus geometry: 65% of the width for the focused tile, the rest
// for a column of thumbnails.
var (
	focusRegion  = Rect{X: margin, Y: margin, W: 1224, H: 1048}
	thumbsRegion = Rect{X: 1256, Y: margin, W: 648, H: 1048}
)

// Duo is the side by side head to head table.
func Duo() Table {
	return Table{
		Name:   "duo",
		Canvas: Canonical,
		Slots: map[string]Rect{
			"left":  {X: 16, Y: 16, W: 936, H: 1048},
			"right": {X: 968, Y: 16, W: 936, H: 1048},
		},
		Focus:           focusRegion,
		Thumbs:          thumbsRegion,
		ThumbMaxHeight:  320,
		Gap:             margin,
		SingleColumnMax: 3,
	}
}

// Quad is the 2x2 bracket table.
func Quad() Table {
	return Table{
		Name:   "quad",
		Canvas: Canonical,
		Slots: map[string]Rect{
			"top-left":     {X: 16, Y: 16, W: 936, H: 516},
			"top-right":    {X: 968, Y: 16, W: 936, H: 516},
			"bottom-left":  {X: 16, Y: 548, W: 936, H: 516},
			"bottom-right": {X: 968, Y: 548, W: 936, H: 516},
		},
		Focus:           focusRegion,
		Thumbs:          thumbsRegion,
		ThumbMaxHeight:  320,
		Gap:             margin,
		SingleColumnMax: 3,
	}
}

// Octo is the 4x2 table for eight runner heats. With one runner focused
// the other seven fill two columns, leaving the top right cell free for the
// timer.
func Octo() Table {
	return Table{
		Name:   "octo",
		Canvas: Canonical,
		Slots: map[string]Rect{
			"top-left":            {X: 16, Y: 16, W: 460, H: 516},
			"top-center-left":     {X: 492, Y: 16, W: 460, H: 516},
			"top-center-right":    {X: 968, Y: 16, W: 460, H: 516},
			"top-right":           {X: 1444, Y: 16, W: 460, H: 516},
			"bottom-left":         {X: 16, Y: 548, W: 460, H: 516},
			"bottom-center-left":  {X: 492, Y: 548, W: 460, H: 516},
			"bottom-center-right": {X: 968, Y: 548, W: 460, H: 516},
			"bottom-right":        {X: 1444, Y: 548, W: 460, H: 516},
		},
		Focus:           focusRegion,
		Thumbs:          thumbsRegion,
		ThumbMaxHeight:  320,
		Gap:             margin,
		SingleColumnMax: 3,
		Cells: map[int][]Cell{
			7: {
				{Col: 0, Row: 0},
				{Col: 0, Row: 1},
				{Col: 1, Row: 1},
				{Col: 0, Row: 2},
				{Col: 1, Row: 2},
				{Col: 0, Row: 3},
				{Col: 1, Row: 3},
			},
		},
	}
}

// Named returns a preset by name.
func Named(name string) (Table, error) {
	switch strings.ToLower(name) {
	case "duo":
		return Duo(), nil
	case "quad":
		return Quad(), nil
	case "octo":
		return Octo(), nil
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

// ForRoster picks a preset by name, or by roster size when name is empty.
func ForRoster(name string, n int) (Table, error) {
	if name != "" {
		return Named(name)
	}
	switch {
	case n <= 2:
		return Duo(), nil
	case n <= 4:
		return Quad(), nil
	default:
		return Octo(), nil
	}
}

// LoadTable reads a custom table from a YAML file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read layout file: %w", err)
	}

	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Table{}, fmt.Errorf("failed to parse layout %s: %w", path, err)
	}
	if t.Canvas == (Size{}) {
		t.Canvas = Canonical
	}
	if t.Name == "" {
		t.Name = "custom"
	}

	return t, nil
}

// Validate checks that the table covers slots and that its regions are
// well formed.
func (t Table) Validate(slots []string) error {
	for _, s := range slots {
		if _, ok := t.Slots[s]; !ok {
			return fmt.Errorf("%w: %q in table %q", ErrUnknownSlot, s, t.Name)
		}
	}

	names := make([]string, 0, len(t.Slots))
	for name := range t.Slots {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, a := range names {
		ra := t.Slots[a]
		if ra.Empty() || !ra.Inside(t.Canvas) {
			return fmt.Errorf("%w: slot %q %s", ErrOutOfCanvas, a, ra)
		}
		for _, b := range names[i+1:] {
			if ra.Overlaps(t.Slots[b]) {
				return fmt.Errorf("%w: slots %q and %q", ErrOverlap, a, b)
			}
		}
	}

	for name, r := range map[string]Rect{"focus": t.Focus, "thumbs": t.Thumbs} {
		if r.Empty() || !r.Inside(t.Canvas) {
			return fmt.Errorf("%w: %s region %s", ErrOutOfCanvas, name, r)
		}
	}
	if t.Focus.Overlaps(t.Thumbs) {
		return fmt.Errorf("%w: focus and thumbnail regions", ErrOverlap)
	}
	if t.ThumbMaxHeight <= 0 || t.SingleColumnMax < 1 || t.Gap < 0 {
		return fmt.Errorf("%w: thumbnail sizing", ErrBadCells)
	}

	for n, cells := range t.Cells {
		if len(cells) != n {
			return fmt.Errorf("%w: table for %d thumbnails has %d cells", ErrBadCells, n, len(cells))
		}
		seen := make(map[Cell]bool, n)
		for _, c := range cells {
			if c.Col < 0 || c.Col > 1 || c.Row < 0 || seen[c] {
				return fmt.Errorf("%w: cell %+v in table for %d", ErrBadCells, c, n)
			}
			seen[c] = true
		}
	}

	return t.validateThumbs()
}

// epsilon absorbs rounding in thumbnail arithmetic.
const epsilon = 1e-6

// validateThumbs lays out every possible thumbnail count and checks that
// each thumbnail is non-empty, stays inside the thumbnail region, overlaps
// no other thumbnail and is strictly smaller than the focus region.
func (t Table) validateThumbs() error {
	focus := t.Focus.Area()

	for n := 1; n < state.MaxTiles; n++ {
		thumbs := make([]Rect, n)
		for i := range thumbs {
			r := t.Thumb(n, i)
			switch {
			case r.Empty():
				return fmt.Errorf("%w: thumbnail %d of %d is empty (%s)", ErrBadThumbs, i, n, r)
			case !within(r, t.Thumbs):
				return fmt.Errorf("%w: thumbnail %d of %d %s leaves region %s", ErrBadThumbs, i, n, r, t.Thumbs)
			case r.Area() >= focus:
				return fmt.Errorf("%w: thumbnail %d of %d is not smaller than the focus region", ErrBadThumbs, i, n)
			}
			for j, o := range thumbs[:i] {
				if overlapping(r, o) {
					return fmt.Errorf("%w: thumbnails %d and %d of %d overlap", ErrBadThumbs, j, i, n)
				}
			}
			thumbs[i] = r
		}
	}

	return nil
}

func within(r, outer Rect) bool {
	return r.X >= outer.X-epsilon && r.Y >= outer.Y-epsilon &&
		r.Right() <= outer.Right()+epsilon && r.Bottom() <= outer.Bottom()+epsilon
}

func overlapping(a, b Rect) bool {
	w := min(a.Right(), b.Right()) - max(a.X, b.X)
	h := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	return w > epsilon && h > epsilon
}

// cells returns the two column placement for n thumbnails.
func (t Table) cells(n int) []Cell {
	if c, ok := t.Cells[n]; ok && len(c) == n {
		return c
	}
	c := make([]Cell, n)
	for i := range c {
		c[i] = Cell{Col: i % 2, Row: i / 2}
	}
	return c
}

// Thumb returns the rectangle of thumbnail i out of n. It depends on
// nothing but n and i.
func (t Table) Thumb(n, i int) Rect {
	if n <= 0 || i < 0 || i >= n {
		return Rect{}
	}

	r := t.Thumbs
	if n <= t.SingleColumnMax {
		h := min(t.ThumbMaxHeight, (r.H-t.Gap*float64(n-1))/float64(n))
		return Rect{X: r.X, Y: r.Y + float64(i)*(h+t.Gap), W: r.W, H: h}
	}

	cells := t.cells(n)
	rows := 0
	for _, c := range cells {
		rows = max(rows, c.Row+1)
	}
	colW := (r.W - t.Gap) / 2
	rowH := min(t.ThumbMaxHeight, (r.H-t.Gap*float64(rows-1))/float64(rows))
	c := cells[i]

	return Rect{
		X: r.X + float64(c.Col)*(colW+t.Gap),
		Y: r.Y + float64(c.Row)*(rowH+t.Gap),
		W: colW,
		H: rowH,
	}
}
