// Package client is the terminal chat client: it keeps one server
// connection, turns typed lines into commands and prints what arrives.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

const (
	dialTimeout   = 5 * time.Second
	maxFrameBytes = 1 << 20
)

var (
	// ErrQuit is returned by Execute after /quit.
	ErrQuit = errors.New("quit")
	// ErrNotConnected is returned when a command needs a live connection.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Connect while a connection is open.
	ErrAlreadyConnected = errors.New("already connected")
)

// link is one TCP connection and its receive loop.
type link struct {
	conn net.Conn
	done chan struct{}

	mu        sync.Mutex
	local     bool
	welcomed  bool
	closeOnce sync.Once
}

func (l *link) close(local bool) {
	l.mu.Lock()
	if local {
		l.local = true
	}
	l.mu.Unlock()
	l.closeOnce.Do(func() {
		_ = l.conn.Close()
	})
}

func (l *link) closedLocally() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.local
}

// Client tracks one server connection plus the state learned from responses.
type Client struct {
	out   io.Writer
	outMu sync.Mutex
	log   *zerolog.Logger

	mu       sync.Mutex
	link     *link
	server   string
	clientID string
	nickname string
	channels []string
}

// New creates a client that renders output to out.
func New(out io.Writer, logger *zerolog.Logger) *Client {
	return &Client{
		out: out,
		log: logger,
	}
}

// Connect dials host:port, starts the receive loop and sends the connect command.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	c.mu.Lock()
	if c.link != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	l := &link{conn: conn, done: make(chan struct{})}

	c.mu.Lock()
	if c.link != nil {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrAlreadyConnected
	}
	c.link = l
	c.channels = nil
	c.mu.Unlock()

	go c.receive(l)

	c.printf("[INFO] TCP connection established to %s\n", addr)
	c.log.Debug().Str("addr", addr).Msg("connected")

	return c.Send(proto.CmdConnect(host, port))
}

// Connected reports whether a connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.link != nil
}

// Done is closed when the current connection's receive loop exits. It
// returns nil while disconnected.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.link == nil {
		return nil
	}
	return c.link.done
}

// Nickname is the last nickname confirmed by the server.
func (c *Client) Nickname() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nickname
}

// Channel is the current channel: the most recently joined one still held.
func (c *Client) Channel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.channels) == 0 {
		return ""
	}
	return c.channels[len(c.channels)-1]
}

// Send encodes m and writes it to the server.
func (c *Client) Send(m proto.Message) error {
	c.mu.Lock()
	l := c.link
	c.mu.Unlock()
	if l == nil {
		return ErrNotConnected
	}

	frame, err := proto.Encode(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Name, err)
	}
	if _, err := l.conn.Write(frame); err != nil {
		c.drop(l, true)
		c.printf("[INFO] Disconnected from server.\n")
		return fmt.Errorf("send %s: %w", m.Name, err)
	}
	c.log.Debug().Str("name", m.Name).Msg("sent command")
	return nil
}

// Disconnect closes the connection, if any, and waits for the receive loop.
func (c *Client) Disconnect() {
	c.mu.Lock()
	l := c.link
	c.mu.Unlock()
	if l == nil {
		return
	}
	c.drop(l, true)
	<-l.done
	c.printf("[INFO] Disconnected from server.\n")
}

// drop detaches l from the client so a later Connect can open a new link.
func (c *Client) drop(l *link, local bool) {
	l.close(local)
	c.mu.Lock()
	if c.link == l {
		c.link = nil
		c.channels = nil
	}
	c.mu.Unlock()
}

func (c *Client) receive(l *link) {
	defer close(l.done)

	scanner := bufio.NewScanner(l.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := proto.Decode(line)
		if err != nil {
			c.printf("[WARN] Invalid message from server: %v\n", err)
			continue
		}
		if !c.render(l, msg) {
			c.drop(l, true)
			return
		}
	}

	local := l.closedLocally()
	c.drop(l, false)
	if local {
		return
	}
	if err := scanner.Err(); err != nil {
		c.printf("[ERROR] Connection lost: %v\n", err)
	} else {
		c.printf("[INFO] Server closed the connection.\n")
	}
	c.printf("[INFO] Use /connect to reconnect.\n")
}

func (c *Client) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
