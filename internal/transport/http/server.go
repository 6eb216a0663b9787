// Package http exposes a read-only admin API over the hub state.
package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/core"
)

const readHeaderTimeout = 5 * time.Second

// NewServer builds the admin HTTP server listening on addr.
func NewServer(hub *core.Hub, addr string, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	handlers := NewStatusHandlers(hub, logger)
	router.GET("/health", handlers.Health)

	api := router.Group("/api")
	api.GET("/channels", handlers.ListChannels)
	api.GET("/stats", handlers.Stats)

	return &stdhttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
