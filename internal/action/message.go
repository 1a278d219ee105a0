package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedFrame is returned when a frame cannot be decoded into a Message.
var ErrMalformedFrame = errors.New("malformed frame")

// envelope is the wire shape of every frame in both directions.
type envelope struct {
	Action  string          `json:"action"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Message is a decoded service message. Messages are values and are never
// modified after construction; copies share the same read-only content.
type Message struct {
	code      Code
	requestID string
	content   json.RawMessage
	received  time.Time
}

// NewMessage builds a Message from already-encoded JSON content.
func NewMessage(code Code, requestID string, content json.RawMessage) Message {
	return Message{
		code:      code,
		requestID: requestID,
		content:   bytes.Clone(content),
		received:  time.Now(),
	}
}

// Decode parses one inbound frame. The frame must carry a known action and, if it
// has content, the content must be a JSON object.
func Decode(frame []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Action == "" {
		return Message{}, fmt.Errorf("%w: missing action", ErrMalformedFrame)
	}

	code, err := ParseCode(env.Action)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	var requestID string
	if len(env.Content) > 0 && !bytes.Equal(env.Content, []byte("null")) {
		var head struct {
			RequestID string `json:"requestID"`
		}
		if err := json.Unmarshal(env.Content, &head); err != nil {
			return Message{}, fmt.Errorf("%w: content: %v", ErrMalformedFrame, err)
		}
		requestID = head.RequestID
	}

	return Message{
		code:      code,
		requestID: requestID,
		content:   env.Content,
		received:  time.Now(),
	}, nil
}

// Encode builds an outbound frame. content is marshalled as-is; callers add
// "requestID" to it for correlated codes.
func Encode(code Code, content any) ([]byte, error) {
	if !code.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(code))
	}

	var raw json.RawMessage
	if content != nil {
		b, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s content: %w", code, err)
		}
		raw = b
	}

	return json.Marshal(envelope{Action: code.String(), Content: raw})
}

// Code returns the message's action code.
func (m Message) Code() Code { return m.code }

// Family is shorthand for m.Code().Family().
func (m Message) Family() Family { return m.code.Family() }

// RequestID returns the correlation id, or "" for uncorrelated messages.
func (m Message) RequestID() string { return m.requestID }

// Received returns when the message was decoded.
func (m Message) Received() time.Time { return m.received }

// Content returns a copy of the raw JSON content.
func (m Message) Content() json.RawMessage { return bytes.Clone(m.content) }

// Decode unmarshals the content into v.
func (m Message) Decode(v any) error {
	if len(m.content) == 0 {
		return fmt.Errorf("%s: empty content", m.code)
	}
	if err := json.Unmarshal(m.content, v); err != nil {
		return fmt.Errorf("%s: decode content: %w", m.code, err)
	}
	return nil
}

// String is used in log fields.
func (m Message) String() string {
	if m.requestID == "" {
		return m.code.String()
	}
	return m.code.String() + "#" + m.requestID
}
