/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Seednode/hitbox/layout"
	"github.com/Seednode/hitbox/overlay"
	"github.com/charmbracelet/lipgloss"
)

const (
	miniCols = 48
	miniRows = 14
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return mutedStyle.Render("Waiting for overlay state...") + "\n\n" + m.renderFooter()
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.renderRoster()),
		" ",
		boxStyle.Render(m.renderMiniature()),
	))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// =============================================================================
// Sections
// =============================================================================

func (m Model) renderHeader() string {
	snap := m.view.Snapshot

	status := onlineStyle.Render("online")
	if !m.connected {
		status = offlineStyle.Render("offline")
	}

	clock := clockStyle.Render(m.view.Clock)
	if snap.Timer.Running {
		clock = runningStyle.Render(m.view.Clock)
	}

	edits := ""
	if snap.Edits.Open {
		edits = "  " + selectedStyle.Render("editing")
	}

	return fmt.Sprintf("%s  %s  %s  %s  %s%s",
		titleStyle.Render(snap.Title),
		dimStyle.Render(m.view.Table),
		clock,
		mutedStyle.Render(fmt.Sprintf("hits %d", m.view.Hits)),
		status,
		edits)
}

func (m Model) renderRoster() string {
	snap := m.view.Snapshot

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-3s %-20s %5s %6s %5s", "#", "Runner", "Hits", "Epoch", "Live")))

	live := make(map[int]bool, len(m.view.Mounted))
	for _, id := range m.view.Mounted {
		live[id] = true
	}

	for i, tile := range snap.Tiles {
		b.WriteString("\n")

		marker := "  "
		if snap.Focus == tile.ID {
			marker = focusStyle.Render("* ")
		}

		mounted := "-"
		if live[tile.ID] {
			mounted = "yes"
		}

		line := fmt.Sprintf("%-3d %-20s %5d %6d %5s", tile.ID, truncate(tile.Name, 20), tile.Hits, snap.Epoch(tile.ID), mounted)
		if i == m.selected {
			line = selectedStyle.Render(line)
		} else {
			line = baseStyle.Render(line)
		}

		b.WriteString(marker + line)
	}

	return b.String()
}

func (m Model) renderMiniature() string {
	v := m.view
	v.Layout = m.placements()

	return Miniature(v, miniCols, miniRows)
}

func (m Model) renderFooter() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	if s := m.view.Seeks; s.Count > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("seek round trip p50 %.0fms  p99 %.0fms  (%d)", s.P50, s.P99, s.Count)))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("1-8 select  f focus  0 clear  h/H hits  r reload  p/P play/pause  [ ] { } seek  m mute  t/T timer  q quit"))

	return b.String()
}

// Miniature draws the current layout scaled onto a cols by rows character
// grid. Tiles are drawn in stacking order so an elevated tile covers the
// ones beneath it.
func Miniature(v overlay.View, cols, rows int) string {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	if v.Canvas.W <= 0 || v.Canvas.H <= 0 {
		return render(grid)
	}

	placements := append([]layout.Placement(nil), v.Layout...)
	sort.SliceStable(placements, func(i, j int) bool {
		return placements[i].Z < placements[j].Z
	})

	to := layout.Size{W: float64(cols), H: float64(rows)}
	for _, p := range placements {
		box(grid, p.Rect.Scale(v.Canvas, to), p.TileID, p.Focused)
	}

	return render(grid)
}

func box(grid [][]rune, r layout.Rect, id int, focused bool) {
	rows, cols := len(grid), len(grid[0])

	x0 := clamp(int(math.Round(r.X)), 0, cols-1)
	y0 := clamp(int(math.Round(r.Y)), 0, rows-1)
	x1 := clamp(int(math.Round(r.Right()))-1, x0, cols-1)
	y1 := clamp(int(math.Round(r.Bottom()))-1, y0, rows-1)

	edge, side := '-', '|'
	if focused {
		edge, side = '=', '#'
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case (y == y0 || y == y1) && (x == x0 || x == x1):
				grid[y][x] = '+'
			case y == y0 || y == y1:
				grid[y][x] = edge
			case x == x0 || x == x1:
				grid[y][x] = side
			default:
				grid[y][x] = ' '
			}
		}
	}

	label := []rune(fmt.Sprint(id))
	cy := (y0 + y1) / 2
	cx := (x0+x1)/2 - len(label)/2
	for i, c := range label {
		if x := cx + i; x > x0 && x < x1 {
			grid[cy][x] = c
		}
	}
}

func render(grid [][]rune) string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = string(row)
	}

	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "~"
}
