package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/config"
	"github.com/vovakirdan/wirechat-tcp/internal/core"
	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

type testServer struct {
	addr   string
	hub    *core.Hub
	cancel context.CancelFunc
	done   chan error
}

func startServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.MaxDecodeFailures = 3
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zerolog.Nop()
	hub := core.NewHub(&logger, core.WithWriteTimeout(cfg.WriteTimeout))
	srv := NewServer(hub, cfg, &logger)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ts := &testServer{
		addr:   ln.Addr().String(),
		hub:    hub,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() {
		ts.done <- srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-ts.done:
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})
	return ts
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

// dialRaw opens a connection without consuming the welcome frame.
func dialRaw(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

// dial connects and consumes the connect acknowledgment.
func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	c := dialRaw(t, addr)
	welcome := c.next()
	if welcome.Kind != proto.KindResponse || welcome.Name != "connect" || welcome.Field("status") != proto.StatusOK {
		t.Fatalf("unexpected welcome: %v", welcome)
	}
	return c
}

func (c *testClient) send(m proto.Message) {
	c.t.Helper()
	frame, err := proto.Encode(m)
	if err != nil {
		c.t.Fatalf("encode: %v", err)
	}
	c.sendRaw(string(frame))
}

func (c *testClient) sendRaw(s string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(s)); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testClient) next() proto.Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		c.t.Fatalf("read frame: %v", err)
	}
	m, err := proto.Decode(line)
	if err != nil {
		c.t.Fatalf("decode %q: %v", line, err)
	}
	return m
}

func (c *testClient) expectResponse(name, status string) proto.Message {
	c.t.Helper()
	m := c.next()
	if m.Kind != proto.KindResponse || m.Name != name || m.Field("status") != status {
		c.t.Fatalf("expected %s response with status %s, got %v", name, status, m)
	}
	return m
}

func (c *testClient) expectEvent(name string) proto.Message {
	c.t.Helper()
	m := c.next()
	if m.Kind != proto.KindEvent || m.Name != name {
		c.t.Fatalf("expected %s event, got %v", name, m)
	}
	return m
}

func (c *testClient) expectSilence(d time.Duration) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(d))
	line, err := c.r.ReadBytes('\n')
	if err == nil {
		c.t.Fatalf("expected no frame, got %q", line)
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		c.t.Fatalf("expected read timeout, got %v", err)
	}
}

func (c *testClient) expectClosed() {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := c.r.ReadBytes('\n')
	if !errors.Is(err, io.EOF) {
		var opErr *net.OpError
		if !errors.As(err, &opErr) || opErr.Timeout() {
			c.t.Fatalf("expected connection closed, got %v", err)
		}
	}
}

func (c *testClient) localPort() string {
	_, port, _ := net.SplitHostPort(c.conn.LocalAddr().String())
	return port
}
