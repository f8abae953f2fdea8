package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/logihub/logihub/internal/config"
	"github.com/logihub/logihub/internal/copilot"
	"github.com/logihub/logihub/internal/copilot/agent"
	"github.com/logihub/logihub/internal/geocode"
	"github.com/logihub/logihub/internal/geocode/nominatim"
	"github.com/logihub/logihub/internal/planner"
	"github.com/logihub/logihub/internal/planner/logistics"
	"github.com/logihub/logihub/internal/render"
	"github.com/logihub/logihub/internal/session"
	"github.com/logihub/logihub/internal/store"
	"github.com/logihub/logihub/internal/store/sqlite"
)

// app wires the services used by CLI commands. Every command builds one,
// uses it, and closes it before exiting.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  store.Store
	render *render.Renderer

	identity *session.Identity
	sessions *session.Service
	backend  *logistics.Client
	planner  *planner.Service
	agent    *agent.Client
	copilot  *copilot.Service
	geocoder *geocode.Service
}

func newApp(_ context.Context, cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if url := cmd.String("backend"); url != "" {
		cfg.BackendURL = url
	}
	if lvl := cmd.String("log"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("service", "logihub").
		Logger()

	st, err := openStore(cfg.StorePath, log)
	if err != nil {
		return nil, err
	}

	identity := session.NewIdentity(st, log)
	sessions := session.NewService(st, log)

	backend := logistics.NewClient(logistics.ClientConfig{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})

	plannerSvc := planner.NewService(planner.ServiceConfig{
		Backend:   backend,
		Identity:  identity,
		Snapshots: sessions,
		Logger:    log,
	})

	agentClient := agent.NewClient(agent.ClientConfig{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})

	copilotSvc := copilot.NewService(copilot.ServiceConfig{
		Backend:      agentClient,
		Identity:     identity,
		Session:      sessions,
		Logger:       log,
		PollInterval: cfg.PollInterval,
	})

	geocoder := geocode.NewService(geocode.ServiceConfig{
		Provider: nominatim.NewClient(nominatim.ClientConfig{
			BaseURL:   cfg.GeocoderURL,
			UserAgent: "logihub/" + Version,
			Logger:    log,
		}),
		Logger: log,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		render:   render.New(),
		identity: identity,
		sessions: sessions,
		backend:  backend,
		planner:  plannerSvc,
		agent:    agentClient,
		copilot:  copilotSvc,
		geocoder: geocoder,
	}, nil
}

// openStore opens the sqlite state database, creating its directory when
// needed. A store that cannot be opened degrades to in-memory state so
// read-only commands still work.
func openStore(path string, log zerolog.Logger) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("state directory unavailable, using in-memory store")
		return store.NewInMemoryStore(), nil
	}

	st, err := sqlite.New(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("state database unavailable, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	return st, nil
}

// Close flushes background work and releases the store.
func (a *app) Close() {
	a.planner.Wait()
	a.copilot.Wait()
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing state store")
	}
}
