package core

import (
	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

func (h *Hub) encode(m proto.Message) []byte {
	frame, err := proto.Encode(m)
	if err != nil {
		h.log.Error().Err(err).Str("name", m.Name).Msg("encode outbound message")
		return nil
	}
	return frame
}

// SendTo writes the message to exactly one session. A failed write closes
// that session's connection so its handler unwinds; the error is not
// returned to the caller.
func (h *Hub) SendTo(id string, m proto.Message) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		return
	}

	frame := h.encode(m)
	if frame == nil {
		return
	}
	h.deliver(s, frame)
}

// Broadcast writes the message to every member of channel except exclude
// and returns the number of recipients. Membership is snapshotted under the
// lock; writes happen after it is released, so joins and leaves that race
// with this call only affect the next broadcast.
func (h *Hub) Broadcast(channel string, m proto.Message, exclude string) int {
	h.mu.Lock()
	var targets []*Session
	if ch, ok := h.channels[channel]; ok {
		targets = make([]*Session, 0, ch.Len())
		for id := range ch.members {
			if id == exclude {
				continue
			}
			if s, ok := h.sessions[id]; ok {
				targets = append(targets, s)
			}
		}
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return 0
	}
	frame := h.encode(m)
	if frame == nil {
		return 0
	}
	for _, s := range targets {
		h.deliver(s, frame)
	}
	return len(targets)
}

func (h *Hub) deliver(s *Session, frame []byte) {
	if err := s.write(frame, h.writeTimeout); err != nil {
		h.log.Warn().
			Err(err).
			Str("session_id", s.id).
			Str("remote_addr", s.remoteAddr).
			Msg("write failed, dropping connection")
		s.close()
	}
}
