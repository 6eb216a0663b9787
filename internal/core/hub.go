package core

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

// Conn is the write side of a client connection. net.Conn satisfies it.
type Conn interface {
	io.Writer
	Close() error
}

// Hub owns every session and channel record. Both registries share one
// lock; callers only ever hold session IDs and channel names.
type Hub struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	channels     map[string]*Channel
	lastActivity time.Time

	writeTimeout time.Duration
	now          func() time.Time
	log          *zerolog.Logger
}

// Option customizes a Hub.
type Option func(*Hub)

// WithWriteTimeout bounds each socket write when the connection supports deadlines.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHub creates an empty hub.
func NewHub(logger *zerolog.Logger, opts ...Option) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		sessions: make(map[string]*Session),
		channels: make(map[string]*Channel),
		now:      time.Now,
		log:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.lastActivity = h.now()
	return h
}

// Touch records client activity for the idle supervisor.
func (h *Hub) Touch() {
	h.mu.Lock()
	h.lastActivity = h.now()
	h.mu.Unlock()
}

// Stats is a point-in-time view of registry sizes.
type Stats struct {
	Sessions     int       `json:"sessions"`
	Channels     int       `json:"channels"`
	LastActivity time.Time `json:"last_activity"`
}

// Stats reports current registry sizes.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Sessions:     len(h.sessions),
		Channels:     len(h.channels),
		LastActivity: h.lastActivity,
	}
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown notifies every session, closes their connections and clears
// both registries. It returns the number of sessions that were dropped.
func (h *Hub) Shutdown(reason string) int {
	h.mu.Lock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	clear(h.sessions)
	clear(h.channels)
	h.mu.Unlock()

	frame := h.encode(proto.ServerShutdown(reason))
	for _, s := range targets {
		if frame != nil {
			if err := s.write(frame, h.writeTimeout); err != nil {
				h.log.Debug().Err(err).Str("session_id", s.id).Msg("shutdown notice not delivered")
			}
		}
		s.close()
	}
	h.log.Info().Int("sessions", len(targets)).Msg("hub cleared")
	return len(targets)
}
