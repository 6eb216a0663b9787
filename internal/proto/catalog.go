package proto

import "time"

// Command names a client-to-server operation. Responses reuse the command name.
type Command string

const (
	CommandConnect Command = "connect"
	CommandNick    Command = "nick"
	CommandList    Command = "list"
	CommandJoin    Command = "join"
	CommandLeave   Command = "leave"
	CommandMsg     Command = "msg"
	CommandHelp    Command = "help"
	CommandQuit    Command = "quit"
)

// Commands lists every command the protocol defines.
var Commands = []Command{
	CommandConnect,
	CommandNick,
	CommandList,
	CommandJoin,
	CommandLeave,
	CommandMsg,
	CommandHelp,
	CommandQuit,
}

// ParseCommand maps a wire name onto a known command.
func ParseCommand(name string) (Command, bool) {
	for _, c := range Commands {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Event names an unsolicited server-to-client notification.
type Event string

const (
	EventMessage        Event = "message"
	EventUserJoined     Event = "user_joined"
	EventUserLeft       Event = "user_left"
	EventServerShutdown Event = "server_shutdown"
)

// Response status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// UnknownName is used for error responses to frames that could not be attributed to a command.
const UnknownName = "unknown"

// ConnectData is the payload of a connect command.
type ConnectData struct {
	Server string `json:"server"`
	Port   int    `json:"port"`
}

// NickData requests a nickname change.
type NickData struct {
	Nickname string `json:"nickname"`
}

// JoinData requests to join a channel.
type JoinData struct {
	Channel string `json:"channel"`
}

// LeaveData requests to leave a channel; empty means the current one.
type LeaveData struct {
	Channel string `json:"channel,omitempty"`
}

// MsgData is chat text; empty channel means the current one.
type MsgData struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// QuitData carries an optional reason.
type QuitData struct {
	Reason string `json:"reason,omitempty"`
}

// ResponseStatus is the common part of every response payload.
type ResponseStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// ConnectedData is the connect acknowledgment.
type ConnectedData struct {
	Server   string `json:"server"`
	ClientID string `json:"client_id"`
	MOTD     string `json:"motd,omitempty"`
}

// ChannelInfo describes one channel in a list response.
type ChannelInfo struct {
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// ListData is the list response payload.
type ListData struct {
	Channels []ChannelInfo `json:"channels"`
}

// HelpData is the help response payload.
type HelpData struct {
	Commands []string `json:"commands"`
}

// EventMessageData is a chat message relayed to a channel.
type EventMessageData struct {
	Channel   string  `json:"channel"`
	From      string  `json:"from"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// EventUserData notifies that a user joined or left a channel.
type EventUserData struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
}

// ShutdownData carries an optional shutdown reason.
type ShutdownData struct {
	Reason string `json:"reason,omitempty"`
}

func command(c Command, data map[string]any) Message {
	if data == nil {
		data = map[string]any{}
	}
	return Message{Kind: KindCommand, Name: string(c), Data: data}
}

func event(e Event, data map[string]any) Message {
	if data == nil {
		data = map[string]any{}
	}
	return Message{Kind: KindEvent, Name: string(e), Data: data}
}

// CmdConnect builds a connect command.
func CmdConnect(server string, port int) Message {
	return command(CommandConnect, map[string]any{"server": server, "port": port})
}

// CmdNick builds a nick command.
func CmdNick(nickname string) Message {
	return command(CommandNick, map[string]any{"nickname": nickname})
}

// CmdList builds a list command.
func CmdList() Message {
	return command(CommandList, nil)
}

// CmdJoin builds a join command.
func CmdJoin(channel string) Message {
	return command(CommandJoin, map[string]any{"channel": channel})
}

// CmdLeave builds a leave command. An empty channel leaves the current one.
func CmdLeave(channel string) Message {
	data := map[string]any{}
	if channel != "" {
		data["channel"] = channel
	}
	return command(CommandLeave, data)
}

// CmdMsg builds a chat message command. An empty channel targets the current one.
func CmdMsg(text, channel string) Message {
	data := map[string]any{"text": text}
	if channel != "" {
		data["channel"] = channel
	}
	return command(CommandMsg, data)
}

// CmdHelp builds a help command.
func CmdHelp() Message {
	return command(CommandHelp, nil)
}

// CmdQuit builds a quit command with an optional reason.
func CmdQuit(reason string) Message {
	data := map[string]any{}
	if reason != "" {
		data["reason"] = reason
	}
	return command(CommandQuit, data)
}

// OK builds a success response for the named command.
func OK(name string, fields map[string]any) Message {
	data := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["status"] = StatusOK
	return Message{Kind: KindResponse, Name: name, Data: data}
}

// Error builds an error response for the named command.
func Error(name, errMsg string, fields map[string]any) Message {
	data := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		data[k] = v
	}
	data["status"] = StatusError
	data["error"] = errMsg
	return Message{Kind: KindResponse, Name: name, Data: data}
}

// Connected acknowledges a connection.
func Connected(server, clientID, motd string) Message {
	fields := map[string]any{"server": server, "client_id": clientID}
	if motd != "" {
		fields["motd"] = motd
	}
	return OK(string(CommandConnect), fields)
}

// NickChanged confirms a nickname change.
func NickChanged(nickname string) Message {
	return OK(string(CommandNick), map[string]any{"nickname": nickname})
}

// ChannelList answers a list command.
func ChannelList(channels []ChannelInfo) Message {
	if channels == nil {
		channels = []ChannelInfo{}
	}
	return OK(string(CommandList), map[string]any{"channels": channels})
}

// Joined confirms a join.
func Joined(channel string) Message {
	return OK(string(CommandJoin), map[string]any{"channel": channel})
}

// Left confirms a leave.
func Left(channel string) Message {
	return OK(string(CommandLeave), map[string]any{"channel": channel})
}

// Help answers a help command.
func Help(commands []string) Message {
	if commands == nil {
		commands = []string{}
	}
	return OK(string(CommandHelp), map[string]any{"commands": commands})
}

// QuitAck confirms a quit.
func QuitAck() Message {
	return OK(string(CommandQuit), nil)
}

// ChatMessage relays chat text sent to a channel.
func ChatMessage(channel, from, text string, at time.Time) Message {
	return event(EventMessage, map[string]any{
		"channel":   channel,
		"from":      from,
		"text":      text,
		"timestamp": float64(at.UnixMilli()) / 1000,
	})
}

// UserJoined announces a new channel member.
func UserJoined(channel, user string) Message {
	return event(EventUserJoined, map[string]any{"channel": channel, "user": user})
}

// UserLeft announces a member leaving a channel.
func UserLeft(channel, user string) Message {
	return event(EventUserLeft, map[string]any{"channel": channel, "user": user})
}

// ServerShutdown announces that the server is going away.
func ServerShutdown(reason string) Message {
	data := map[string]any{}
	if reason != "" {
		data["reason"] = reason
	}
	return event(EventServerShutdown, data)
}
