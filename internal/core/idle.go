package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IdleFor reports how long the hub has been without sessions. ok is false
// while any session is registered.
func (h *Hub) IdleFor() (idle time.Duration, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sessions) > 0 {
		return 0, false
	}
	return h.now().Sub(h.lastActivity), true
}

// IdleSupervisor stops an unattended server: once no sessions are
// registered and the last activity is older than Threshold, OnIdle fires.
type IdleSupervisor struct {
	Hub       *Hub
	Threshold time.Duration
	Interval  time.Duration
	OnIdle    func()
	Log       *zerolog.Logger
}

// Run checks every Interval until ctx ends or the idle threshold is crossed.
// OnIdle fires at most once, within one Interval of the threshold.
func (s *IdleSupervisor) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			idle, ok := s.Hub.IdleFor()
			if !ok || idle <= s.Threshold {
				continue
			}
			if s.Log != nil {
				s.Log.Info().Dur("idle", idle).Msg("server idle, shutting down")
			}
			if s.OnIdle != nil {
				s.OnIdle()
			}
			return nil
		}
	}
}
