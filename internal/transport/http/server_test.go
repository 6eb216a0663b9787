package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-tcp/internal/core"
)

type nopConn struct{}

func (nopConn) Write(p []byte) (int, error) { return len(p), nil }
func (nopConn) Close() error                { return nil }

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(&logger)
	server := NewServer(hub, ":0", &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts, hub
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestChannelsEndpoint(t *testing.T) {
	ts, hub := startTestServer(t)

	a := hub.Register(nopConn{}, "127.0.0.1:1001")
	b := hub.Register(nopConn{}, "127.0.0.1:1002")
	for _, join := range []struct{ channel, id string }{{"#cats", a}, {"#cats", b}, {"#dogs", b}} {
		if _, err := hub.Join(join.channel, join.id); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	resp, err := ts.Client().Get(ts.URL + "/api/channels")
	if err != nil {
		t.Fatalf("channels request failed: %v", err)
	}
	defer resp.Body.Close()

	var channels []ChannelResponse
	if err := json.NewDecoder(resp.Body).Decode(&channels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(channels) != 2 || channels[0] != (ChannelResponse{Name: "#cats", Users: 2}) || channels[1] != (ChannelResponse{Name: "#dogs", Users: 1}) {
		t.Fatalf("unexpected channels: %+v", channels)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, hub := startTestServer(t)
	hub.Register(nopConn{}, "127.0.0.1:1001")

	resp, err := ts.Client().Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("stats request failed: %v", err)
	}
	defer resp.Body.Close()

	var stats StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Sessions != 1 || stats.Channels != 0 || stats.LastActivity == "" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
