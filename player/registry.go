/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package player

import (
	"slices"
	"sync"
)

// Surface is a mounted player that can be handed commands. Implementations
// must not block.
type Surface interface {
	// Key identifies the surface's owner, e.g. one overlay page.
	Key() string
	// Send relays cmd to the player of tile. requestID is empty for fire
	// and forget commands. It reports whether the command was queued.
	Send(tile, epoch int, cmd Command, requestID string) bool
}

type mount struct {
	epoch   int
	surface Surface
}

// Registry tracks which surfaces currently show each tile.
type Registry struct {
	mu     sync.RWMutex
	mounts map[int]map[string]mount
}

func NewRegistry() *Registry {
	return &Registry{
		mounts: make(map[int]map[string]mount),
	}
}

// Mount records that s shows tile at epoch. A mount for an older epoch than
// the one already recorded for s is ignored.
func (r *Registry) Mount(tile, epoch int, s Surface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.mounts[tile]
	if !ok {
		m = make(map[string]mount)
		r.mounts[tile] = m
	}
	if cur, ok := m[s.Key()]; ok && cur.epoch > epoch {
		return false
	}
	m[s.Key()] = mount{epoch: epoch, surface: s}

	return true
}

// Unmount removes the mount of key for tile, but only if it is still the
// one recorded for epoch.
func (r *Registry) Unmount(tile, epoch int, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.mounts[tile]
	cur, ok := m[key]
	if !ok || cur.epoch != epoch {
		return false
	}
	delete(m, key)
	if len(m) == 0 {
		delete(r.mounts, tile)
	}

	return true
}

// Drop removes every mount owned by key and returns how many there were.
func (r *Registry) Drop(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for tile, m := range r.mounts {
		if _, ok := m[key]; ok {
			delete(m, key)
			n++
		}
		if len(m) == 0 {
			delete(r.mounts, tile)
		}
	}

	return n
}

// Ready reports whether any surface shows tile.
func (r *Registry) Ready(tile int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.mounts[tile]) > 0
}

// Tiles lists the tiles with at least one mount.
func (r *Registry) Tiles() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tiles := make([]int, 0, len(r.mounts))
	for tile := range r.mounts {
		tiles = append(tiles, tile)
	}
	slices.Sort(tiles)

	return tiles
}

// send fans cmd out to every surface showing tile.
func (r *Registry) send(tile int, cmd Command, requestID string) bool {
	r.mu.RLock()
	targets := make([]mount, 0, len(r.mounts[tile]))
	for _, m := range r.mounts[tile] {
		targets = append(targets, m)
	}
	r.mu.RUnlock()

	sent := false
	for _, m := range targets {
		if m.surface.Send(tile, m.epoch, cmd, requestID) {
			sent = true
		}
	}

	return sent
}
