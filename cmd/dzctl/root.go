package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Amnesthesia/dz-app/internal/app"
	"github.com/Amnesthesia/dz-app/internal/clock"
	"github.com/Amnesthesia/dz-app/internal/config"
	"github.com/Amnesthesia/dz-app/internal/poll"
	"github.com/Amnesthesia/dz-app/internal/remote"
	"github.com/Amnesthesia/dz-app/internal/session"
)

// env wires the per-invocation dependency graph: config, remote client,
// session and services, built leaves-first.
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	client   *remote.Client
	session  *session.Session
	poller   *poll.Poller
	manifest *app.ManifestService
	groups   *app.GroupService
	loads    *app.LoadService
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "dzctl",
		Short:         "Dropzone manifest client",
		Long:          "dzctl manages a dropzone's daily loads: manifesting, group manifests, dispatch calls and landings.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "dzctl.yaml", "path to the config file")

	root.AddCommand(
		newLoadsCmd(&cfgPath),
		newWatchCmd(&cfgPath),
		newManifestCmd(&cfgPath),
		newGroupCmd(&cfgPath),
		newUnmanifestCmd(&cfgPath),
		newCreateLoadCmd(&cfgPath),
		newCallCmd(&cfgPath),
		newCancelCmd(&cfgPath),
		newLandedCmd(&cfgPath),
		newCrewCmd(&cfgPath),
		newPlaneCmd(&cfgPath),
	)
	return root
}

// setup loads config, opens the session against the configured dropzone and
// primes the load snapshot once.
func setup(ctx context.Context, cfgPath string) (*env, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg.Logging)

	httpClient := &http.Client{}
	if cfg.ServerTimeout() > 0 {
		httpClient.Timeout = cfg.ServerTimeout()
	}
	client := remote.New(cfg.Server.URL, cfg.Server.Token,
		remote.WithHTTPClient(httpClient),
		remote.WithLogger(log.With().Str("component", "remote").Logger()),
	)

	dropzone, currentUser, err := client.Dropzone(ctx, cfg.Dropzone)
	if err != nil {
		return nil, fmt.Errorf("fetch dropzone: %w", err)
	}

	clk := clock.NewSystem()
	sess := session.New(dropzone, currentUser)
	poller := poll.New(client, sess, clk,
		poll.WithInterval(cfg.PollInterval()),
		poll.WithLogger(log.With().Str("component", "poll").Logger()),
	)
	if err := poller.RefreshNow(ctx); err != nil {
		return nil, fmt.Errorf("fetch loads: %w", err)
	}

	return &env{
		cfg:      cfg,
		log:      log,
		client:   client,
		session:  sess,
		poller:   poller,
		manifest: app.NewManifestService(client, client, sess, clk),
		groups:   app.NewGroupService(client, client, sess, clk),
		loads:    app.NewLoadService(client, sess, clk),
	}, nil
}

func (e *env) close() {
	e.session.Close()
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(writer).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
