/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package overlay

import (
	"net/http"
	"time"

	"github.com/Seednode/hitbox/player"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one overlay.
type Metrics struct {
	registry *prometheus.Registry

	actions  *prometheus.CounterVec
	commands *prometheus.CounterVec
	seeks    *prometheus.CounterVec
	seekRTT  prometheus.Histogram
	clients  *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitbox_actions_total",
		Help: "Operator actions applied, by action",
	}, []string{"action"})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitbox_player_commands_total",
		Help: "Player commands issued, by function and whether any surface took them",
	}, []string{"func", "result"})
	seeks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hitbox_seek_round_trips_total",
		Help: "Relative seeks resolved, by outcome",
	}, []string{"outcome"})
	seekRTT := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hitbox_seek_round_trip_seconds",
		Help:    "Time from position request to seek for applied relative seeks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})
	clients := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hitbox_clients",
		Help: "Connected websocket clients, by role",
	}, []string{"role"})

	registry.MustRegister(actions, commands, seeks, seekRTT, clients)

	for _, role := range []Role{RoleOverlay, RolePanel} {
		clients.WithLabelValues(string(role))
	}

	return &Metrics{
		registry: registry,
		actions:  actions,
		commands: commands,
		seeks:    seeks,
		seekRTT:  seekRTT,
		clients:  clients,
	}
}

func (m *Metrics) Action(name string) {
	m.actions.WithLabelValues(name).Inc()
}

// PlayerCommand implements player.Recorder.
func (m *Metrics) PlayerCommand(fn string, delivered bool) {
	result := "sent"
	if !delivered {
		result = "dropped"
	}
	m.commands.WithLabelValues(fn, result).Inc()
}

// SeekResolved implements player.Recorder.
func (m *Metrics) SeekResolved(outcome player.Outcome, elapsed time.Duration) {
	m.seeks.WithLabelValues(outcome.String()).Inc()
	if outcome == player.Applied {
		m.seekRTT.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ClientJoined(role Role) {
	m.clients.WithLabelValues(string(role)).Inc()
}

func (m *Metrics) ClientLeft(role Role) {
	m.clients.WithLabelValues(string(role)).Dec()
}

// Handler serves the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
