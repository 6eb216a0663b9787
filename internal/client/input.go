package client

import (
	"strings"
)

// DefaultPort is used by /connect when no port is given.
const DefaultPort = 6667

// Input is one parsed line typed by the user.
type Input struct {
	// Command is the lowercased slash command without the slash. It is
	// empty for plain chat text.
	Command string
	Args    []string
	// Text is the whole line for chat text, or everything after the
	// command word for slash commands.
	Text string
}

// IsChat reports whether the line is plain text to send to the current channel.
func (in Input) IsChat() bool {
	return in.Command == ""
}

// ParseInput splits a user line into a slash command or chat text.
// ok is false for blank lines and a lone "/".
func ParseInput(line string) (in Input, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Input{}, false
	}
	if !strings.HasPrefix(line, "/") {
		return Input{Text: line}, true
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Input{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[1:]), fields[0]))
	return Input{
		Command: strings.ToLower(fields[0]),
		Args:    fields[1:],
		Text:    rest,
	}, true
}

// LocalHelp is printed for /help while disconnected.
var LocalHelp = []string{
	"/connect <server> [port]   Connect to a server",
	"/nick <nickname>           Set your nickname",
	"/list                      List channels",
	"/join <channel>            Join a channel",
	"/leave [channel]           Leave current or given channel",
	"/help                      Ask server for help text",
	"/quit [reason]             Quit the client",
}
