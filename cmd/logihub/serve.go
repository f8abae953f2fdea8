package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/logihub/logihub/internal/facade"
	"github.com/logihub/logihub/internal/telemetry"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Expose the planner over a localhost HTTP facade",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Bind address (defaults to the configured listen_addr)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := cmd.String("listen")
			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			tp, err := telemetry.Init(ctx, telemetry.Config{
				ServiceName:    "logihub-facade",
				ServiceVersion: Version,
				OTLPEndpoint:   a.cfg.Telemetry.OTLPEndpoint,
				Enabled:        a.cfg.Telemetry.Enabled,
			})
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					a.log.Error().Err(err).Msg("failed to shutdown telemetry")
				}
			}()

			// Pick up any persisted session before serving.
			a.planner.Restore(ctx)
			a.copilot.Hydrate(ctx)

			router := facade.NewRouter(facade.RouterConfig{
				Logger:         a.log,
				Planner:        a.planner,
				Copilot:        a.copilot,
				Sessions:       a.sessions,
				Geocoder:       a.geocoder,
				Prober:         a.backend,
				TracingEnabled: a.cfg.Telemetry.Enabled,
			})

			server := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 75 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go a.copilot.Watch(sigCtx)

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Msg("facade listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-sigCtx.Done():
			}

			a.log.Info().Msg("shutting down facade")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
