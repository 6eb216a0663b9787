package proto

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestEncodeProducesSingleTerminatedFrame(t *testing.T) {
	frame, err := Encode(CmdMsg("line one\nline two", "#cats"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(frame, []byte("\n")) {
		t.Fatalf("frame not newline-terminated: %q", frame)
	}
	if n := bytes.Count(frame, []byte("\n")); n != 1 {
		t.Fatalf("expected exactly one newline, got %d in %q", n, frame)
	}
}

func TestEncodeWireShape(t *testing.T) {
	frame, err := Encode(Joined("#cats"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"type":"response","name":"join","data":{"channel":"#cats","status":"ok"}}` + "\n"
	if string(frame) != want {
		t.Fatalf("unexpected frame:\n got %s\nwant %s", frame, want)
	}
}

func TestEncodeEmptyPayloadIsObject(t *testing.T) {
	frame, err := Encode(Message{Kind: KindCommand, Name: "list"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"type":"command","name":"list","data":{}}` + "\n"
	if string(frame) != want {
		t.Fatalf("unexpected frame: %s", frame)
	}
}

func TestRoundTrip(t *testing.T) {
	at := time.Date(2024, 11, 22, 19, 59, 40, 123000000, time.UTC)
	messages := []Message{
		CmdConnect("localhost", 6667),
		CmdNick("alice"),
		CmdList(),
		CmdJoin("#cats"),
		CmdLeave(""),
		CmdLeave("#cats"),
		CmdMsg("hi \"there\"\n", ""),
		CmdHelp(),
		CmdQuit("bye"),
		Connected("ChatServer:6667", "51234", "Welcome"),
		NickChanged("alice"),
		ChannelList([]ChannelInfo{{Name: "#cats", Users: 2}, {Name: "#dogs", Users: 1}}),
		Joined("#cats"),
		Left("#cats"),
		Help([]string{"/nick <nickname>", "/list"}),
		QuitAck(),
		Error("nick", "Invalid nickname format", map[string]any{"code": "invalid_nickname"}),
		ChatMessage("#cats", "alice", "hi", at),
		UserJoined("#cats", "bob"),
		UserLeft("#cats", "bob"),
		ServerShutdown("Server shutting down"),
		ServerShutdown(""),
	}

	for _, m := range messages {
		t.Run(string(m.Kind)+"/"+m.Name, func(t *testing.T) {
			frame, err := Encode(m)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := Decode(bytes.TrimSuffix(frame, []byte("\n")))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.Kind != m.Kind || decoded.Name != m.Name {
				t.Fatalf("header mismatch: got %s/%s want %s/%s", decoded.Kind, decoded.Name, m.Kind, m.Name)
			}
			again, err := Encode(decoded)
			if err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			if !bytes.Equal(frame, again) {
				t.Fatalf("payload changed across round trip:\n first %s\nsecond %s", frame, again)
			}
		})
	}
}

func TestRoundTripStringPayloadIsIdentical(t *testing.T) {
	m := UserJoined("#cats", "bob")
	frame, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, m) {
		t.Fatalf("got %+v, want %+v", decoded, m)
	}
}

func TestDecodeDefaultsData(t *testing.T) {
	for _, line := range []string{
		`{"type":"command","name":"list"}`,
		`{"type":"command","name":"list","data":null}`,
	} {
		m, err := Decode([]byte(line))
		if err != nil {
			t.Fatalf("decode %s: %v", line, err)
		}
		if m.Data == nil || len(m.Data) != 0 {
			t.Fatalf("expected empty data for %s, got %v", line, m.Data)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `hello`},
		{"truncated", `{"type":"command","name":"jo`},
		{"array", `[1,2,3]`},
		{"missing type", `{"name":"join"}`},
		{"unknown type", `{"type":"shout","name":"join"}`},
		{"missing name", `{"type":"command","data":{}}`},
		{"non-string name", `{"type":"command","name":7}`},
		{"data not object", `{"type":"command","name":"join","data":[1]}`},
		{"null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.line))
			if err == nil {
				t.Fatalf("expected error for %s", tt.line)
			}
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("expected protocol error, got %v", err)
			}
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ProtocolError, got %T", err)
			}
		})
	}
}

func TestBind(t *testing.T) {
	m, err := Decode([]byte(`{"type":"command","name":"msg","data":{"text":"hi","channel":"#cats"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var data MsgData
	if err := m.Bind(&data); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if data.Text != "hi" || data.Channel != "#cats" {
		t.Fatalf("unexpected bound payload: %+v", data)
	}

	bad := Message{Kind: KindCommand, Name: "nick", Data: map[string]any{"nickname": 42}}
	var nick NickData
	if err := bad.Bind(&nick); err == nil {
		t.Fatalf("expected bind error for numeric nickname")
	}
}
