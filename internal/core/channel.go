package core

import (
	"slices"
	"strings"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

// Channel groups sessions that receive each other's broadcasts.
type Channel struct {
	Name    string
	members map[string]struct{}
}

// NewChannel constructs a channel with no members.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		members: make(map[string]struct{}),
	}
}

// AddMember inserts a session. Returns true if newly added.
func (c *Channel) AddMember(id string) bool {
	if _, exists := c.members[id]; exists {
		return false
	}
	c.members[id] = struct{}{}
	return true
}

// RemoveMember deletes a session. Returns true if removed.
func (c *Channel) RemoveMember(id string) bool {
	if _, exists := c.members[id]; !exists {
		return false
	}
	delete(c.members, id)
	return true
}

// Empty returns true if no sessions are in the channel.
func (c *Channel) Empty() bool {
	return len(c.members) == 0
}

// Len returns the member count.
func (c *Channel) Len() int {
	return len(c.members)
}

// ValidateChannelName requires a leading '#' and at least one more character.
func ValidateChannelName(name string) error {
	if len(name) < 2 || !strings.HasPrefix(name, "#") {
		return ErrInvalidChannelName
	}
	return nil
}

// Join adds the session to the channel, creating the channel on first join.
// added is false when the session was already a member; the channel then
// becomes the session's current channel again.
func (h *Hub) Join(channel, id string) (added bool, err error) {
	channel = strings.TrimSpace(channel)
	if err := ValidateChannelName(channel); err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return false, ErrUnknownSession
	}
	ch, exists := h.channels[channel]
	if !exists {
		ch = NewChannel(channel)
		h.channels[channel] = ch
	}
	added = ch.AddMember(id)
	s.dropChannel(channel)
	s.channels = append(s.channels, channel)
	return added, nil
}

// Leave removes the session from channel, or from its current channel when
// channel is empty, and returns the channel actually left. An emptied
// channel is deleted.
func (h *Hub) Leave(channel, id string) (string, error) {
	channel = strings.TrimSpace(channel)

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return "", ErrUnknownSession
	}
	if channel == "" {
		channel = s.current()
		if channel == "" {
			return "", ErrNoChannel
		}
	}
	if !s.inChannel(channel) {
		return "", ErrNotInChannel
	}
	s.dropChannel(channel)
	h.detachLocked(channel, id)
	return channel, nil
}

// detachLocked removes id from the channel's member set and deletes the
// channel once empty. Callers hold h.mu.
func (h *Hub) detachLocked(channel, id string) {
	ch, ok := h.channels[channel]
	if !ok {
		return
	}
	ch.RemoveMember(id)
	if ch.Empty() {
		delete(h.channels, channel)
	}
}

// Resolve picks the channel a message goes to: the named one, or the
// session's current channel when channel is empty. The session must be a
// member. The sender's nickname is returned alongside.
func (h *Hub) Resolve(channel, id string) (string, string, error) {
	channel = strings.TrimSpace(channel)

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if !ok {
		return "", "", ErrUnknownSession
	}
	if channel == "" {
		channel = s.current()
		if channel == "" {
			return "", "", ErrNoChannel
		}
	}
	if !s.inChannel(channel) {
		return "", "", ErrNotInChannel
	}
	return channel, s.nickname, nil
}

// ListChannels returns every channel with its member count, sorted by name.
func (h *Hub) ListChannels() []proto.ChannelInfo {
	h.mu.Lock()
	out := make([]proto.ChannelInfo, 0, len(h.channels))
	for name, ch := range h.channels {
		out = append(out, proto.ChannelInfo{Name: name, Users: ch.Len()})
	}
	h.mu.Unlock()

	slices.SortFunc(out, func(a, b proto.ChannelInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// MembersOf returns the session IDs in the channel; empty if it does not exist.
func (h *Hub) MembersOf(channel string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.channels[channel]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, ch.Len())
	for id := range ch.members {
		out = append(out, id)
	}
	return out
}
