/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/hitbox/layout"
	"github.com/Seednode/hitbox/overlay"
	"github.com/Seednode/hitbox/state"
	"github.com/julienschmidt/httprouter"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

// securityHeaders omits Cross-Origin-Embedder-Policy, which would keep the
// overlay's player frames from loading.
func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func cspPage(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data: https:")
}

// cspOverlay additionally allows the embedded players.
func cspOverlay(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy",
		fmt.Sprintf("default-src 'self'; img-src 'self' data: https:; frame-src %s", cfg.trustedOrigin))
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

// humanReadableSize formats a response size for the access log.
func humanReadableSize(n int64) string {
	const units = "kMGTPE"

	if n < 1000 {
		return fmt.Sprintf("%d B", n)
	}

	size := float64(n)
	i := -1
	for size >= 1000 && i < len(units)-1 {
		size /= 1000
		i++
	}

	return fmt.Sprintf("%.1f %cB", size, units[i])
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("hitbox v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Version page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// loadTable picks the slot table: a custom file if one is configured,
// otherwise the roster's named preset or the smallest one that fits.
func loadTable(cfg *Config, roster state.Roster) (layout.Table, error) {
	if cfg.layout != "" {
		return layout.LoadTable(cfg.layout)
	}

	return layout.ForRoster(roster.Layout, len(roster.Tiles))
}

func newHub(cfg *Config) (*overlay.Hub, string, error) {
	roster, err := state.LoadRoster(cfg.roster)
	if err != nil {
		return nil, "", err
	}

	table, err := loadTable(cfg, roster)
	if err != nil {
		return nil, "", err
	}

	hub, err := overlay.NewHub(overlay.Options{
		Roster:        roster,
		Table:         table,
		SeekTimeout:   cfg.seekTimeout,
		TrustedOrigin: cfg.trustedOrigin,
		Logger:        &cfg.log,
		Metrics:       overlay.NewMetrics(),
	})
	if err != nil {
		return nil, "", err
	}

	logf(cfg, "START: %q with %d tiles on the %s layout", roster.Title, len(roster.Tiles), table.Name)

	return hub, roster.Title, nil
}

func newRouter(cfg *Config, hub *overlay.Hub, title string, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		cfg.log.Error().Interface("panic", i).Str("path", r.URL.Path).Msg("handler panicked")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		io.WriteString(w, newPage(cfg, "Server Error", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/", serveHomePage(cfg, title, errs))

	mux.GET(cfg.prefix+"/favicons/*favicon", serveFavicons(cfg, errs))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	mux.Handler("GET", cfg.prefix+"/metrics", hub.Metrics().Handler())

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	registerOverlay(cfg, mux, hub, errs)

	registerAPI(cfg, mux, hub, errs)

	return mux
}

func ServePage(ctx context.Context, cfg *Config, args []string) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: hitbox v%s", releaseVersion)

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	hub, title, err := newHub(cfg)
	if err != nil {
		return err
	}

	errs := make(chan error, 64)
	go func() {
		for err := range errs {
			cfg.log.Debug().Err(err).Msg("failed to write response")
		}
	}()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           newRouter(cfg, hub, title, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	failed := make(chan error, 1)
	go func() {
		var err error
		logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-failed:
		return fmt.Errorf("failed to serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	logf(cfg, "STOP: hitbox v%s", releaseVersion)

	return nil
}
