/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Seednode/hitbox/player"
	"github.com/Seednode/hitbox/tui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	layout        string
	logFormat     string
	port          int
	prefix        string
	profile       bool
	roster        string
	seekTimeout   time.Duration
	tlsCert       string
	tlsKey        string
	trustedOrigin string
	verbose       bool
	version       bool

	panelURL string

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.seekTimeout <= 0 {
		return fmt.Errorf("invalid seek timeout (must be positive): %s", c.seekTimeout)
	}
	if c.logFormat != "console" && c.logFormat != "json" {
		return fmt.Errorf("invalid log format (must be console or json): %q", c.logFormat)
	}
	if u, err := url.Parse(c.trustedOrigin); err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
		return fmt.Errorf("invalid trusted origin (must be scheme://host): %q", c.trustedOrigin)
	}
	c.trustedOrigin = strings.TrimSuffix(c.trustedOrigin, "/")

	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// bindEnv lets HITBOX_<FLAG> environment variables fill any flag not given
// on the command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HITBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

func newCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hitbox",
		Short:         "A broadcast overlay for multi-runner speedrun and hitless tournaments.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: HITBOX_BIND)")
	fs.StringVar(&cfg.layout, "layout", "", "path to a custom slot table in YAML (env: HITBOX_LAYOUT)")
	fs.StringVar(&cfg.logFormat, "log-format", "console", "log output format, console or json (env: HITBOX_LOG_FORMAT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: HITBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: HITBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: HITBOX_PROFILE)")
	fs.StringVar(&cfg.roster, "roster", "", "path to the roster file in YAML; built-in bracket if unset (env: HITBOX_ROSTER)")
	fs.DurationVar(&cfg.seekTimeout, "seek-timeout", player.DefaultSeekTimeout, "time to wait for a player to report its position (env: HITBOX_SEEK_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: HITBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: HITBOX_TLS_KEY)")
	fs.StringVar(&cfg.trustedOrigin, "trusted-origin", player.TrustedOrigin, "origin player messages must come from (env: HITBOX_TRUSTED_ORIGIN)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: HITBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: HITBOX_VERSION)")

	bindEnv(newViper(), fs)

	cmd.AddCommand(newPanelCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("hitbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newPanelCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Drive a running overlay from the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(cfg.panelURL)
			if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
				return fmt.Errorf("invalid panel url (must be ws:// or wss://): %q", cfg.panelURL)
			}
			return tui.Run(cmd.Context(), cfg.panelURL)
		},
	}

	fs := cmd.Flags()

	fs.StringVarP(&cfg.panelURL, "url", "u", "ws://localhost:8080/ws", "websocket address of the overlay (env: HITBOX_URL)")

	bindEnv(newViper(), fs)

	return cmd
}
