package client

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

// Execute runs one line typed by the user. It returns ErrQuit after /quit.
// Usage mistakes and connection errors are printed, not returned.
func (c *Client) Execute(ctx context.Context, line string) error {
	in, ok := ParseInput(line)
	if !ok {
		return nil
	}

	if in.IsChat() {
		return c.sendOrReport(proto.CmdMsg(in.Text, c.Channel()))
	}

	switch in.Command {
	case "connect":
		if len(in.Args) < 1 {
			c.printf("Usage: /connect <server> [port]\n")
			return nil
		}
		port := DefaultPort
		if len(in.Args) > 1 {
			p, err := strconv.Atoi(in.Args[1])
			if err != nil || p < 1 || p > 65535 {
				c.printf("[ERROR] Invalid port %q\n", in.Args[1])
				return nil
			}
			port = p
		}
		if err := c.Connect(ctx, in.Args[0], port); err != nil {
			if errors.Is(err, ErrAlreadyConnected) {
				c.printf("[WARN] Already connected. Use /quit to disconnect first.\n")
				return nil
			}
			c.printf("[ERROR] Failed to connect: %v\n", err)
		}
		return nil

	case "help":
		if !c.Connected() {
			c.printf("Local commands:\n")
			for _, l := range LocalHelp {
				c.printf("  %s\n", l)
			}
			return nil
		}
		return c.sendOrReport(proto.CmdHelp())

	case "nick":
		if len(in.Args) != 1 {
			c.printf("Usage: /nick <nickname>\n")
			return nil
		}
		return c.sendOrReport(proto.CmdNick(in.Args[0]))

	case "list":
		return c.sendOrReport(proto.CmdList())

	case "join":
		if len(in.Args) != 1 {
			c.printf("Usage: /join <channel>\n")
			return nil
		}
		return c.sendOrReport(proto.CmdJoin(in.Args[0]))

	case "leave":
		channel := ""
		if len(in.Args) > 0 {
			channel = in.Args[0]
		}
		return c.sendOrReport(proto.CmdLeave(channel))

	case "quit":
		if c.Connected() {
			_ = c.Send(proto.CmdQuit(strings.TrimSpace(in.Text)))
			c.Disconnect()
		}
		return ErrQuit

	default:
		c.printf("[ERROR] Unknown command '/%s'. Type /help.\n", in.Command)
		return nil
	}
}

func (c *Client) sendOrReport(m proto.Message) error {
	if !c.Connected() {
		c.printf("[ERROR] Not connected. Use /connect first.\n")
		return nil
	}
	if err := c.Send(m); err != nil {
		c.printf("[ERROR] Failed to send %s: %v\n", m.Name, err)
	}
	return nil
}
