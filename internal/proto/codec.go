package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind separates commands, responses and events on the wire.
type Kind string

const (
	KindCommand  Kind = "command"
	KindResponse Kind = "response"
	KindEvent    Kind = "event"
)

// Valid reports whether k is one of the three wire kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCommand, KindResponse, KindEvent:
		return true
	default:
		return false
	}
}

// Message is one protocol frame. Constructed by the catalog or by Decode
// and not mutated afterwards.
type Message struct {
	Kind Kind
	Name string
	Data map[string]any
}

// envelope is the JSON shape of a frame.
type envelope struct {
	Type Kind           `json:"type"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

// ErrProtocol is matched by every ProtocolError.
var ErrProtocol = errors.New("protocol error")

// ProtocolError describes a frame that could not be decoded.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
	}
	return "protocol: " + e.Reason
}

// Unwrap lets errors.Is match both ErrProtocol and the underlying cause.
func (e *ProtocolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProtocol, e.Err}
	}
	return []error{ErrProtocol}
}

// Encode serializes a message into a single newline-terminated frame.
// encoding/json escapes control characters, so the frame never contains
// an embedded newline.
func Encode(m Message) ([]byte, error) {
	data := m.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(envelope{Type: m.Kind, Name: m.Name, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s %q: %w", m.Kind, m.Name, err)
	}
	return append(raw, '\n'), nil
}

// Decode parses one frame with its terminator already stripped.
func Decode(line []byte) (Message, error) {
	line = bytes.TrimRight(line, "\r\n")

	var raw struct {
		Type *string        `json:"type"`
		Name *string        `json:"name"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Message{}, &ProtocolError{Reason: "invalid json", Err: err}
	}
	if raw.Type == nil {
		return Message{}, &ProtocolError{Reason: "missing type"}
	}
	kind := Kind(*raw.Type)
	if !kind.Valid() {
		return Message{}, &ProtocolError{Reason: fmt.Sprintf("unknown type %q", *raw.Type)}
	}
	if raw.Name == nil {
		return Message{}, &ProtocolError{Reason: "missing name"}
	}
	if raw.Data == nil {
		raw.Data = map[string]any{}
	}
	return Message{Kind: kind, Name: *raw.Name, Data: raw.Data}, nil
}

// Bind copies the payload into a typed struct using its json tags.
func (m Message) Bind(v any) error {
	raw, err := json.Marshal(m.Data)
	if err != nil {
		return fmt.Errorf("bind %s payload: %w", m.Name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("bind %s payload: %w", m.Name, err)
	}
	return nil
}

// Field returns the payload value under key when it is a string.
func (m Message) Field(key string) string {
	s, _ := m.Data[key].(string)
	return s
}

func (m Message) String() string {
	return fmt.Sprintf("%s/%s %v", m.Kind, m.Name, m.Data)
}
