/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package player

import (
	"sync"
	"time"
)

type Outcome int

const (
	Waiting Outcome = iota
	Applied
	TimedOut
	Malformed
	NoSurface
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Waiting:
		return "waiting"
	case Applied:
		return "applied"
	case TimedOut:
		return "timeout"
	case Malformed:
		return "malformed"
	case NoSurface:
		return "no_surface"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Seek is a single relative seek in flight.
type Seek struct {
	ID    string
	Tile  int
	Delta float64

	ctrl    *Controller
	started time.Time
	once    sync.Once
	done    chan struct{}

	outcome Outcome
	target  float64
}

// Done is closed once the seek resolves.
func (s *Seek) Done() <-chan struct{} {
	return s.done
}

// Outcome is Waiting until Done is closed.
func (s *Seek) Outcome() Outcome {
	select {
	case <-s.done:
		return s.outcome
	default:
		return Waiting
	}
}

// Target is the absolute position sought to, valid when Outcome is Applied.
func (s *Seek) Target() float64 {
	select {
	case <-s.done:
		return s.target
	default:
		return 0
	}
}

// Cancel abandons the seek if it has not resolved yet.
func (s *Seek) Cancel() bool {
	return s.ctrl.finish(s, Cancelled, 0)
}
