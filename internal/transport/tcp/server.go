// Package tcp serves the chat protocol over raw TCP: one newline-delimited
// JSON frame per message, one handler goroutine per admitted connection.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/vovakirdan/wirechat-tcp/internal/config"
	"github.com/vovakirdan/wirechat-tcp/internal/core"
)

// ShutdownReason is announced to clients when the server stops.
const ShutdownReason = "Server shutting down"

// Server accepts connections and bridges them to the hub.
type Server struct {
	hub  *core.Hub
	cfg  config.Config
	log  *zerolog.Logger
	pool *semaphore.Weighted
	wg   sync.WaitGroup
}

// NewServer builds a server bounded to cfg.PoolSize concurrent handlers.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *Server {
	size := cfg.PoolSize
	if size < 1 {
		size = 1
	}
	return &Server{
		hub:  hub,
		cfg:  cfg,
		log:  logger,
		pool: semaphore.NewWeighted(int64(size)),
	}
}

// Serve accepts connections from ln until ctx is cancelled. On exit every
// session receives server_shutdown and handlers get up to the shutdown
// timeout to finish. A handler slot is acquired before each Accept, so
// connections beyond the pool size wait in the listen backlog.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	s.log.Info().Str("addr", ln.Addr().String()).Int("pool_size", s.cfg.PoolSize).Msg("accepting connections")

	var serveErr error
	for {
		if err := s.pool.Acquire(ctx, 1); err != nil {
			break
		}
		conn, err := ln.Accept()
		if err != nil {
			s.pool.Release(1)
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				serveErr = err
				break
			}
			s.log.Error().Err(err).Msg("accept connection")
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.pool.Release(1)
			s.handle(ctx, conn)
		}()
	}

	s.shutdown()
	return serveErr
}

func (s *Server) shutdown() {
	dropped := s.hub.Shutdown(ShutdownReason)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Int("sessions", dropped).Msg("tcp server stopped")
	case <-time.After(s.cfg.ShutdownTimeout):
		s.log.Warn().Dur("timeout", s.cfg.ShutdownTimeout).Msg("handlers still running after shutdown timeout")
	}
}
