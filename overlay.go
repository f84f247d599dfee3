/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Overlay pages
//
// Routes:
//   - /overlay  the 1920x1080 page loaded into the broadcast software
//   - /panel    the operator's control panel
//   - /ws       websocket shared by both, ?role=overlay or ?role=panel
//   - /qr       PNG QR code linking to the control panel, for phones

package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/hitbox/overlay"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

func servePage(cfg *Config, name string, csp func(*Config, http.ResponseWriter), errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		data, err := assets.ReadFile("assets/" + name)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)
		csp(cfg, w)

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: %s to %s in %s", name, realIP(r), time.Since(startTime).Round(time.Microsecond))
	}
}

// qrHandler encodes the control panel URL, so the operator can drive the
// overlay from a phone.
func qrHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr") + "/panel"

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_, err = w.Write(png)
		if err != nil {
			errs <- err

			return
		}
	}
}

func registerOverlay(cfg *Config, mux *httprouter.Router, hub *overlay.Hub, errs chan<- error) {
	mux.GET(cfg.prefix+"/overlay", servePage(cfg, "overlay.html", cspOverlay, errs))
	mux.GET(cfg.prefix+"/panel", servePage(cfg, "panel.html", cspPage, errs))

	mux.GET(cfg.prefix+"/assets/*file", serveAssets(cfg, errs))

	mux.GET(cfg.prefix+"/ws", hub.ServeWS)

	mux.GET(cfg.prefix+"/qr", qrHandler(cfg, errs))
}
