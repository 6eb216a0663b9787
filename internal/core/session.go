package core

import (
	"net"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
	"github.com/vovakirdan/wirechat-tcp/internal/utils"
)

const maxNicknameLen = 20

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Session is the server-side record of one connected client.
type Session struct {
	id         string
	nickname   string
	remoteAddr string
	conn       Conn

	// channels is ordered by join recency; the last entry is the current channel.
	channels []string

	writeMu   sync.Mutex
	closeOnce sync.Once
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// write sends one frame. Frames from concurrent senders never interleave.
func (s *Session) write(frame []byte, timeout time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if d, ok := s.conn.(writeDeadliner); ok && timeout > 0 {
		_ = d.SetWriteDeadline(time.Now().Add(timeout))
	}
	_, err := s.conn.Write(frame)
	return err
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
	})
}

func (s *Session) inChannel(name string) bool {
	return slices.Contains(s.channels, name)
}

func (s *Session) dropChannel(name string) {
	s.channels = slices.DeleteFunc(s.channels, func(c string) bool { return c == name })
}

func (s *Session) current() string {
	if len(s.channels) == 0 {
		return ""
	}
	return s.channels[len(s.channels)-1]
}

// SessionInfo is a read-only copy of session state.
type SessionInfo struct {
	ID         string
	Nickname   string
	RemoteAddr string
	Channels   []string
}

// DefaultNickname derives the placeholder nickname from the remote port.
func DefaultNickname(remoteAddr string) string {
	_, port, err := net.SplitHostPort(remoteAddr)
	if err != nil || port == "" {
		return "user_" + utils.ShortTag(8)
	}
	return "user_" + port
}

// ValidateNickname checks the nickname format: 1-20 letters, digits or underscores.
func ValidateNickname(nickname string) error {
	if nickname == "" || len(nickname) > maxNicknameLen || !nicknamePattern.MatchString(nickname) {
		return ErrInvalidNickname
	}
	return nil
}

// Register inserts a new session for conn and returns its ID.
func (h *Hub) Register(conn Conn, remoteAddr string) string {
	s := &Session{
		id:         utils.NewSessionID(),
		nickname:   DefaultNickname(remoteAddr),
		remoteAddr: remoteAddr,
		conn:       conn,
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	h.lastActivity = h.now()
	count := len(h.sessions)
	h.mu.Unlock()

	h.log.Debug().
		Str("session_id", s.id).
		Str("remote_addr", remoteAddr).
		Str("nickname", s.nickname).
		Int("sessions", count).
		Msg("session registered")
	return s.id
}

// SetNickname validates and assigns a nickname unique among other sessions.
// Setting a session's own current nickname again succeeds.
func (h *Hub) SetNickname(id, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if err := ValidateNickname(nickname); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	for otherID, other := range h.sessions {
		if otherID != id && other.nickname == nickname {
			return ErrDuplicateNickname
		}
	}
	s.nickname = nickname
	return nil
}

// Nickname returns the session's current nickname.
func (h *Hub) Nickname(id string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return "", false
	}
	return s.nickname, true
}

// Session returns a copy of the session's state.
func (h *Hub) Session(id string) (SessionInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return SessionInfo{}, false
	}
	return SessionInfo{
		ID:         s.id,
		Nickname:   s.nickname,
		RemoteAddr: s.remoteAddr,
		Channels:   slices.Clone(s.channels),
	}, true
}

// Remove deletes the session and unwinds its channel memberships, deleting
// channels left empty. It returns the nickname and the channels the session
// was in. Removing an unknown session is a no-op.
func (h *Hub) Remove(id string) (string, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removeLocked(id)
}

func (h *Hub) removeLocked(id string) (string, []string) {
	s, ok := h.sessions[id]
	if !ok {
		return "", nil
	}
	delete(h.sessions, id)

	channels := slices.Clone(s.channels)
	for _, name := range channels {
		h.detachLocked(name, id)
	}
	s.channels = nil
	return s.nickname, channels
}

// Disconnect removes the session, announces user_left to the remaining
// members of each channel it was in and closes its connection.
func (h *Hub) Disconnect(id string) {
	h.mu.Lock()
	s := h.sessions[id]
	nickname, channels := h.removeLocked(id)
	h.mu.Unlock()

	if s == nil {
		return
	}
	for _, name := range channels {
		h.Broadcast(name, proto.UserLeft(name, nickname), "")
	}
	s.close()

	h.log.Debug().
		Str("session_id", id).
		Str("nickname", nickname).
		Strs("channels", channels).
		Msg("session disconnected")
}
