package tcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

// connState tracks a connection through its lifecycle.
type connState int

const (
	stateConnecting connState = iota
	stateActive
	stateClosing
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateConnecting:
		return "connecting"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// connection is the handler state for one accepted socket.
type connection struct {
	srv      *Server
	conn     net.Conn
	id       string
	remote   string
	state    connState
	failures int
	log      zerolog.Logger
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	c := &connection{
		srv:    s,
		conn:   conn,
		remote: remote,
		state:  stateConnecting,
	}

	c.id = s.hub.Register(conn, remote)
	c.log = s.log.With().Str("session_id", c.id).Str("remote_addr", remote).Logger()
	defer c.close()

	if ctx.Err() != nil {
		s.hub.SendTo(c.id, proto.ServerShutdown(ShutdownReason))
		return
	}

	s.hub.SendTo(c.id, proto.Connected(s.cfg.DisplayName(), clientID(remote), s.cfg.MOTD))
	c.setState(stateActive)
	c.readLoop()
}

func (c *connection) setState(next connState) {
	c.log.Debug().Stringer("from", c.state).Stringer("state", next).Msg("connection state")
	c.state = next
}

// readLoop processes frames until the peer goes away, quits, or exceeds
// the decode failure budget.
func (c *connection) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), c.srv.cfg.MaxFrameBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		c.srv.hub.Touch()
		if !c.process(line) {
			return
		}
	}

	err := scanner.Err()
	switch {
	case err == nil, errors.Is(err, io.EOF):
		c.log.Info().Msg("client disconnected")
	case errors.Is(err, net.ErrClosed):
		c.log.Debug().Msg("connection closed locally")
	case errors.Is(err, bufio.ErrTooLong):
		c.log.Warn().Int("max_frame_bytes", c.srv.cfg.MaxFrameBytes).Msg("frame too long, dropping connection")
	default:
		c.log.Warn().Err(err).Msg("read failed")
	}
}

// process handles one frame and reports whether the connection stays open.
func (c *connection) process(line []byte) bool {
	msg, err := proto.Decode(line)
	if err != nil {
		c.failures++
		c.log.Warn().Err(err).Int("failures", c.failures).Msg("invalid message")
		c.reply(proto.Error(proto.UnknownName, "Invalid message format", map[string]any{"code": codeInvalidMessage}))
		if c.failures >= c.srv.cfg.MaxDecodeFailures {
			c.log.Warn().Msg("too many invalid messages, closing connection")
			return false
		}
		return true
	}
	c.failures = 0

	c.log.Debug().Str("kind", string(msg.Kind)).Str("command", msg.Name).Msg("received")
	if msg.Kind != proto.KindCommand {
		c.reply(proto.Error(msg.Name, "Expected command message", map[string]any{"code": codeInvalidMessage}))
		return true
	}
	return c.dispatch(msg)
}

func (c *connection) reply(m proto.Message) {
	c.srv.hub.SendTo(c.id, m)
}

func (c *connection) close() {
	c.setState(stateClosing)
	c.srv.hub.Disconnect(c.id)
	_ = c.conn.Close()
	c.setState(stateClosed)
}

// clientID is the identifier announced in the connect acknowledgment: the remote port.
func clientID(remote string) string {
	_, port, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return port
}
