package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-tcp/internal/config"
	"github.com/vovakirdan/wirechat-tcp/internal/core"
	transporthttp "github.com/vovakirdan/wirechat-tcp/internal/transport/http"
	"github.com/vovakirdan/wirechat-tcp/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	cfg   config.Config
	hub   *core.Hub
	tcp   *tcp.Server
	admin *stdhttp.Server
	log   *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hub := core.NewHub(logger, core.WithWriteTimeout(cfg.WriteTimeout))

	a := &App{
		cfg: cfg,
		hub: hub,
		tcp: tcp.NewServer(hub, cfg, logger),
		log: logger,
	}
	if cfg.AdminAddr != "" {
		a.admin = transporthttp.NewServer(hub, cfg.AdminAddr, logger)
	}
	return a, nil
}

// Run listens on the configured address and serves until ctx is cancelled
// or the server goes idle.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the chat server on ln alongside the idle supervisor and the
// optional admin API. It returns once every component has stopped.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.log.Info().
		Str("addr", ln.Addr().String()).
		Str("server", a.cfg.DisplayName()).
		Msg("starting chat server")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return a.tcp.Serve(gctx, ln)
	})

	idle := &core.IdleSupervisor{
		Hub:       a.hub,
		Threshold: a.cfg.IdleTimeout,
		Interval:  a.cfg.IdleCheckInterval,
		OnIdle:    cancel,
		Log:       a.log,
	}
	g.Go(func() error {
		return idle.Run(gctx)
	})

	if a.admin != nil {
		g.Go(func() error {
			a.log.Info().Str("addr", a.admin.Addr).Msg("starting admin api")
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("admin api: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancelShutdown()

			a.log.Info().Msg("shutting down admin api")
			return a.admin.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	a.log.Info().Msg("server stopped")
	return err
}
