package core

import (
	"fmt"
	"io"
	"testing"

	"github.com/vovakirdan/wirechat-tcp/internal/proto"
)

type discardConn struct{}

func (discardConn) Write(p []byte) (int, error) { return io.Discard.Write(p) }
func (discardConn) Close() error                { return nil }

func benchmarkChannelBroadcast(b *testing.B, recipients int) {
	hub := NewHub(nil)

	sender := hub.Register(discardConn{}, "127.0.0.1:1")
	if _, err := hub.Join("#bench", sender); err != nil {
		b.Fatalf("join: %v", err)
	}
	for i := range recipients {
		id := hub.Register(discardConn{}, fmt.Sprintf("127.0.0.1:%d", i+2))
		if _, err := hub.Join("#bench", id); err != nil {
			b.Fatalf("join: %v", err)
		}
	}
	msg := proto.ChatMessage("#bench", "sender", "payload", nowForTest())

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Broadcast("#bench", msg, sender)
	}
}

func BenchmarkChannelBroadcast_10(b *testing.B)  { benchmarkChannelBroadcast(b, 10) }
func BenchmarkChannelBroadcast_100(b *testing.B) { benchmarkChannelBroadcast(b, 100) }
func BenchmarkChannelBroadcast_500(b *testing.B) { benchmarkChannelBroadcast(b, 500) }
