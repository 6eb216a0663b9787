package tcp

import (
	"errors"
	"strings"
	"time"

	"github.com/vovakirdan/wirechat-tcp/internal/core"
	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

const (
	codeInvalidMessage = "invalid_message"
	codeUnknownCommand = "unknown_command"
	codeBadRequest     = "bad_request"
	codeInternal       = "internal"
)

// HelpLines is the help response body.
var HelpLines = []string{
	"/connect <server> [port] - Connect to server",
	"/nick <nickname> - Set your nickname",
	"/list - List all channels",
	"/join <channel> - Join a channel",
	"/leave [channel] - Leave a channel",
	"/quit - Disconnect from server",
	"/help - Show this help message",
}

// dispatch runs one command and reports whether the connection stays open.
func (c *connection) dispatch(msg proto.Message) bool {
	cmd, ok := proto.ParseCommand(msg.Name)
	if !ok {
		c.reply(proto.Error(msg.Name, "Unknown command", map[string]any{"code": codeUnknownCommand}))
		return true
	}

	switch cmd {
	case proto.CommandConnect:
		c.handleConnect()
	case proto.CommandNick:
		c.handleNick(msg)
	case proto.CommandList:
		c.reply(proto.ChannelList(c.srv.hub.ListChannels()))
	case proto.CommandJoin:
		c.handleJoin(msg)
	case proto.CommandLeave:
		c.handleLeave(msg)
	case proto.CommandMsg:
		c.handleMsg(msg)
	case proto.CommandHelp:
		c.reply(proto.Help(HelpLines))
	case proto.CommandQuit:
		c.handleQuit(msg)
		return false
	}
	return true
}

func (c *connection) replyError(name string, err error) {
	var ce *core.CoreError
	if errors.As(err, &ce) {
		c.reply(proto.Error(name, ce.Message, map[string]any{"code": ce.Code}))
		return
	}
	c.log.Error().Err(err).Str("command", name).Msg("command failed")
	c.reply(proto.Error(name, err.Error(), map[string]any{"code": codeInternal}))
}

func (c *connection) bind(msg proto.Message, v any) bool {
	if err := msg.Bind(v); err != nil {
		c.log.Debug().Err(err).Str("command", msg.Name).Msg("invalid payload")
		c.reply(proto.Error(msg.Name, "Invalid payload", map[string]any{"code": codeBadRequest}))
		return false
	}
	return true
}

func (c *connection) handleConnect() {
	cfg := c.srv.cfg
	c.reply(proto.Connected(cfg.DisplayName(), clientID(c.remote), cfg.MOTD))
}

func (c *connection) handleNick(msg proto.Message) {
	var data proto.NickData
	if !c.bind(msg, &data) {
		return
	}
	if err := c.srv.hub.SetNickname(c.id, data.Nickname); err != nil {
		c.replyError(msg.Name, err)
		return
	}
	nickname, _ := c.srv.hub.Nickname(c.id)
	c.log.Info().Str("nickname", nickname).Msg("nickname set")
	c.reply(proto.NickChanged(nickname))
}

func (c *connection) handleJoin(msg proto.Message) {
	var data proto.JoinData
	if !c.bind(msg, &data) {
		return
	}
	channel := strings.TrimSpace(data.Channel)
	added, err := c.srv.hub.Join(channel, c.id)
	if err != nil {
		c.replyError(msg.Name, err)
		return
	}
	nickname, _ := c.srv.hub.Nickname(c.id)
	c.log.Info().Str("nickname", nickname).Str("channel", channel).Bool("added", added).Msg("joined channel")

	c.reply(proto.Joined(channel))
	if added {
		c.srv.hub.Broadcast(channel, proto.UserJoined(channel, nickname), c.id)
	}
}

func (c *connection) handleLeave(msg proto.Message) {
	var data proto.LeaveData
	if !c.bind(msg, &data) {
		return
	}
	channel, err := c.srv.hub.Leave(data.Channel, c.id)
	if err != nil {
		c.replyError(msg.Name, err)
		return
	}
	nickname, _ := c.srv.hub.Nickname(c.id)
	c.log.Info().Str("nickname", nickname).Str("channel", channel).Msg("left channel")

	c.reply(proto.Left(channel))
	c.srv.hub.Broadcast(channel, proto.UserLeft(channel, nickname), c.id)
}

func (c *connection) handleMsg(msg proto.Message) {
	var data proto.MsgData
	if !c.bind(msg, &data) {
		return
	}
	text := strings.TrimSpace(data.Text)
	if text == "" {
		return
	}
	channel, nickname, err := c.srv.hub.Resolve(data.Channel, c.id)
	if err != nil {
		c.replyError(msg.Name, err)
		return
	}
	c.log.Debug().Str("channel", channel).Str("nickname", nickname).Str("text", text).Msg("relaying message")
	c.srv.hub.Broadcast(channel, proto.ChatMessage(channel, nickname, text, time.Now()), c.id)
}

func (c *connection) handleQuit(msg proto.Message) {
	var data proto.QuitData
	_ = msg.Bind(&data)
	reason := data.Reason
	if reason == "" {
		reason = "Client quit"
	}
	c.log.Info().Str("reason", reason).Msg("client requested quit")
	c.reply(proto.QuitAck())
}
