package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

// recordingConn captures frames written by the hub.
type recordingConn struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	closed     bool
	failWrites bool
}

func (c *recordingConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.failWrites {
		return 0, errors.New("broken pipe")
	}
	return c.buf.Write(p)
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *recordingConn) messages(t *testing.T) []proto.Message {
	t.Helper()

	c.mu.Lock()
	data := bytes.Clone(c.buf.Bytes())
	c.mu.Unlock()

	var out []proto.Message
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m, err := proto.Decode(scanner.Bytes())
		if err != nil {
			t.Fatalf("decode recorded frame %q: %v", scanner.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	c.buf.Reset()
	c.mu.Unlock()
}

var nextPort = 40000

func register(t *testing.T, hub *Hub) (string, *recordingConn) {
	t.Helper()
	nextPort++
	conn := &recordingConn{}
	id := hub.Register(conn, fmt.Sprintf("127.0.0.1:%d", nextPort))
	return id, conn
}

func mustJoin(t *testing.T, hub *Hub, channel, id string) {
	t.Helper()
	if _, err := hub.Join(channel, id); err != nil {
		t.Fatalf("join %s: %v", channel, err)
	}
}

func countNamed(msgs []proto.Message, name string) int {
	n := 0
	for _, m := range msgs {
		if m.Name == name {
			n++
		}
	}
	return n
}
