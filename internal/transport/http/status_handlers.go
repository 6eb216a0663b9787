package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/core"
)

// StatusHandlers serves read-only views of the hub.
type StatusHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewStatusHandlers creates a new status handlers instance.
func NewStatusHandlers(hub *core.Hub, logger *zerolog.Logger) *StatusHandlers {
	return &StatusHandlers{
		hub: hub,
		log: logger,
	}
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// StatsResponse summarizes registry sizes.
type StatsResponse struct {
	Sessions     int    `json:"sessions"`
	Channels     int    `json:"channels"`
	LastActivity string `json:"last_activity"`
}

// Health reports liveness.
// GET /health
func (h *StatusHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// ListChannels returns every channel with its member count.
// GET /api/channels
func (h *StatusHandlers) ListChannels(c *gin.Context) {
	channels := h.hub.ListChannels()
	response := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		response = append(response, ChannelResponse{Name: ch.Name, Users: ch.Users})
	}
	c.JSON(http.StatusOK, response)
}

// Stats returns session and channel counts.
// GET /api/stats
func (h *StatusHandlers) Stats(c *gin.Context) {
	stats := h.hub.Stats()
	c.JSON(http.StatusOK, StatsResponse{
		Sessions:     stats.Sessions,
		Channels:     stats.Channels,
		LastActivity: stats.LastActivity.UTC().Format(time.RFC3339),
	})
}
