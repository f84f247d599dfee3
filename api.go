/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Seednode/hitbox/overlay"
	"github.com/Seednode/hitbox/state"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

const maxActionBody = 64 * 1024

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

func serveState(cfg *Config, hub *overlay.Hub, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := hub.View(r.Context())
		if err != nil {
			_ = writeJSON(w, http.StatusServiceUnavailable, apiError{err.Error()})

			return
		}

		if err := writeJSON(w, http.StatusOK, view); err != nil {
			errs <- err
		}
	}
}

func serveAction(cfg *Config, hub *overlay.Hub, errs chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		var action overlay.Action
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&action); err != nil {
			_ = writeJSON(w, http.StatusBadRequest, apiError{"malformed action: " + err.Error()})

			return
		}

		err := hub.Dispatch(r.Context(), action)
		switch {
		case errors.Is(err, overlay.ErrUnknownAction):
			_ = writeJSON(w, http.StatusBadRequest, apiError{err.Error()})

			return
		case errors.Is(err, state.ErrUnknownTile):
			_ = writeJSON(w, http.StatusNotFound, apiError{err.Error()})

			return
		case err != nil:
			_ = writeJSON(w, http.StatusServiceUnavailable, apiError{err.Error()})

			return
		}

		view, err := hub.View(r.Context())
		if err != nil {
			_ = writeJSON(w, http.StatusServiceUnavailable, apiError{err.Error()})

			return
		}

		if err := writeJSON(w, http.StatusOK, view); err != nil {
			errs <- err

			return
		}

		logf(cfg, "API: %s tile=%d from %s in %s",
			action.Action,
			action.Tile,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// registerAPI exposes the JSON API to any origin, for stream deck style
// controllers running elsewhere.
func registerAPI(cfg *Config, mux *httprouter.Router, hub *overlay.Hub, errs chan<- error) {
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	stateHandler := c.Handler(serveState(cfg, hub, errs))
	actionHandler := c.Handler(serveAction(cfg, hub, errs))

	mux.Handler(http.MethodGet, cfg.prefix+"/api/state", stateHandler)
	mux.Handler(http.MethodOptions, cfg.prefix+"/api/state", stateHandler)
	mux.Handler(http.MethodPost, cfg.prefix+"/api/action", actionHandler)
	mux.Handler(http.MethodOptions, cfg.prefix+"/api/action", actionHandler)
}
