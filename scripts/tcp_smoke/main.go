package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

type peer struct {
	name   string
	conn   net.Conn
	reader *bufio.Reader
}

func main() {
	if err := run(); err != nil {
		log.Printf("tcp_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "localhost:6667", "chat server address")
	channel := flag.String("channel", "#smoke", "channel to join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	watcher, err := dial(ctx, *addr, "smoke_watcher")
	if err != nil {
		return err
	}
	defer watcher.conn.Close()

	sender, err := dial(ctx, *addr, "smoke_sender")
	if err != nil {
		return err
	}
	defer sender.conn.Close()

	for _, p := range []*peer{watcher, sender} {
		if err := p.send(proto.CmdNick(p.name)); err != nil {
			return err
		}
		if err := p.expectResponse(proto.CommandNick); err != nil {
			return err
		}
		if err := p.send(proto.CmdJoin(*channel)); err != nil {
			return err
		}
		if err := p.expectResponse(proto.CommandJoin); err != nil {
			return err
		}
	}

	if err := sender.send(proto.CmdMsg(*text, *channel)); err != nil {
		return err
	}

	for {
		m, err := watcher.read()
		if err != nil {
			return err
		}
		fmt.Printf("Received: %s\n", m)

		if m.Kind == proto.KindEvent && proto.Event(m.Name) == proto.EventMessage {
			var evt proto.EventMessageData
			if err := m.Bind(&evt); err != nil {
				return fmt.Errorf("bind message: %w", err)
			}
			fmt.Printf("EventMessage: channel=%s from=%s text=%q ts=%.3f\n", evt.Channel, evt.From, evt.Text, evt.Timestamp)
			_ = sender.send(proto.CmdQuit("smoke done"))
			_ = watcher.send(proto.CmdQuit("smoke done"))
			return nil
		}
	}
}

func dial(ctx context.Context, addr, name string) (*peer, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", name, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	p := &peer{name: name, conn: conn, reader: bufio.NewReader(conn)}
	if err := p.expectResponse(proto.CommandConnect); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *peer) send(m proto.Message) error {
	frame, err := proto.Encode(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Name, err)
	}
	if _, err := p.conn.Write(frame); err != nil {
		return fmt.Errorf("%s send %s: %w", p.name, m.Name, err)
	}
	return nil
}

func (p *peer) read() (proto.Message, error) {
	line, err := p.reader.ReadBytes('\n')
	if err != nil {
		return proto.Message{}, fmt.Errorf("%s read: %w", p.name, err)
	}
	return proto.Decode(line)
}

// expectResponse skips events until the response to cmd arrives.
func (p *peer) expectResponse(cmd proto.Command) error {
	for {
		m, err := p.read()
		if err != nil {
			return err
		}
		if m.Kind != proto.KindResponse || m.Name != string(cmd) {
			continue
		}
		if m.Field("status") != proto.StatusOK {
			return fmt.Errorf("%s %s failed: %s", p.name, cmd, m.Field("error"))
		}
		fmt.Printf("%s: %s ok\n", p.name, cmd)
		return nil
	}
}
