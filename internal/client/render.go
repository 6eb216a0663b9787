package client

import (
	"slices"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

// render prints one incoming frame and folds it into client state.
// It returns false when the server announced shutdown.
func (c *Client) render(l *link, m proto.Message) bool {
	switch m.Kind {
	case proto.KindResponse:
		c.renderResponse(l, m)
	case proto.KindEvent:
		return c.renderEvent(m)
	default:
		c.printf("[INFO] Server sent: %s\n", m)
	}
	return true
}

func (c *Client) renderResponse(l *link, m proto.Message) {
	var status proto.ResponseStatus
	if err := m.Bind(&status); err != nil {
		c.printf("[WARN] Invalid %s response: %v\n", m.Name, err)
		return
	}
	if status.Status == proto.StatusError {
		errMsg := status.Error
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		c.printf("[ERROR] %s: %s\n", m.Name, errMsg)
		return
	}

	switch proto.Command(m.Name) {
	case proto.CommandConnect:
		var data proto.ConnectedData
		_ = m.Bind(&data)

		l.mu.Lock()
		repeat := l.welcomed
		l.welcomed = true
		l.mu.Unlock()

		c.mu.Lock()
		c.server = data.Server
		c.clientID = data.ClientID
		c.mu.Unlock()
		if repeat {
			return
		}
		c.printf("[INFO] Connected to server '%s' as client %s\n", data.Server, data.ClientID)
		if data.MOTD != "" {
			c.printf("[MOTD] %s\n", data.MOTD)
		}

	case proto.CommandNick:
		nick := m.Field("nickname")
		if nick == "" {
			c.printf("[INFO] Nickname updated.\n")
			return
		}
		c.mu.Lock()
		c.nickname = nick
		c.mu.Unlock()
		c.printf("[INFO] Nickname set to %s\n", nick)

	case proto.CommandList:
		var data proto.ListData
		_ = m.Bind(&data)
		c.printf("[INFO] Channels:\n")
		for _, ch := range data.Channels {
			c.printf("  %s (%d users)\n", ch.Name, ch.Users)
		}

	case proto.CommandHelp:
		var data proto.HelpData
		_ = m.Bind(&data)
		c.printf("[INFO] Available commands from server:\n")
		for _, line := range data.Commands {
			c.printf("  %s\n", line)
		}

	case proto.CommandJoin:
		ch := m.Field("channel")
		c.mu.Lock()
		c.channels = append(slices.DeleteFunc(c.channels, func(s string) bool { return s == ch }), ch)
		c.mu.Unlock()
		c.printf("[INFO] Joined channel %s\n", ch)

	case proto.CommandLeave:
		ch := m.Field("channel")
		c.mu.Lock()
		c.channels = slices.DeleteFunc(c.channels, func(s string) bool { return s == ch })
		c.mu.Unlock()
		c.printf("[INFO] Left channel %s\n", ch)

	case proto.CommandQuit:
		c.printf("[INFO] Quit acknowledged by server.\n")

	default:
		c.printf("[INFO] %s OK: %v\n", m.Name, m.Data)
	}
}

func (c *Client) renderEvent(m proto.Message) bool {
	switch proto.Event(m.Name) {
	case proto.EventMessage:
		var data proto.EventMessageData
		_ = m.Bind(&data)
		if data.From == "" {
			data.From = "<?>"
		}
		if data.Channel == "" {
			c.printf("%s: %s\n", data.From, data.Text)
		} else {
			c.printf("[%s] %s: %s\n", data.Channel, data.From, data.Text)
		}

	case proto.EventUserJoined:
		c.printf("[INFO] %s joined %s\n", m.Field("user"), m.Field("channel"))

	case proto.EventUserLeft:
		c.printf("[INFO] %s left %s\n", m.Field("user"), m.Field("channel"))

	case proto.EventServerShutdown:
		reason := m.Field("reason")
		if reason == "" {
			reason = "Server is shutting down."
		}
		c.printf("[INFO] SERVER_SHUTDOWN: %s\n", reason)
		c.printf("[INFO] Use /connect to reconnect.\n")
		return false

	default:
		c.printf("[INFO] Event %s: %v\n", m.Name, m.Data)
	}
	return true
}
