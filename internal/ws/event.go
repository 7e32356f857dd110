package ws

import (
	"encoding/json"
	"time"

	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	"github.com/tlettesaid-hue/secret-chat-1/internal/presence"
	"github.com/tlettesaid-hue/secret-chat-1/internal/typing"
)

// EventType tags every frame on the wire.
type EventType string

const (
	// Client -> Server frames
	FrameSendMessage EventType = "send_message"
	FrameTyping      EventType = "typing"
	FrameStopTyping  EventType = "stop_typing"
	FramePing        EventType = "ping"

	// Server -> Client events. The first four are the room event union;
	// every subscriber of a room sees them in identical relative order.
	EventMessageInserted EventType = "message.inserted"
	EventPresenceDiff    EventType = "presence.diff"
	EventTypingDiff      EventType = "typing.diff"
	EventRoomClosed      EventType = "room.closed"

	EventAck   EventType = "ack"
	EventError EventType = "error"
	EventPong  EventType = "pong"
)

// Event is the wire envelope for both directions.
type Event struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`

	// excludeSession is a delivery filter, never serialized: the named
	// session does not receive this event (typing self-echo suppression).
	excludeSession string
}

// SendMessagePayload is the inbound send_message frame body. The sender is
// the connection's session; clients cannot author system messages.
type SendMessagePayload struct {
	Type     string          `json:"type,omitempty"` // text, image, file
	Content  string          `json:"content"`
	Metadata *model.Metadata `json:"metadata,omitempty"`
}

// RoomClosedPayload tells subscribers their room expired.
type RoomClosedPayload struct {
	RoomCode string `json:"room_code"`
	Reason   string `json:"reason"`
}

// AckPayload confirms an inbound frame.
type AckPayload struct {
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	MessageID int64  `json:"message_id,omitempty"`
}

// ErrorPayload carries an error to the client.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates an event with a marshaled payload.
func NewEvent(eventType EventType, payload interface{}) (*Event, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	return &Event{
		Type:      eventType,
		Payload:   raw,
		Timestamp: time.Now(),
	}, nil
}

// NewMessageInserted wraps a freshly appended message. Receivers
// de-duplicate by message id; delivery is at-least-once.
func NewMessageInserted(msg *model.Message) *Event {
	ev, _ := NewEvent(EventMessageInserted, msg)
	return ev
}

// NewPresenceDiff wraps a join/leave diff.
func NewPresenceDiff(diff *presence.Diff) *Event {
	ev, _ := NewEvent(EventPresenceDiff, diff)
	return ev
}

// NewTypingDiff wraps a typing change, excluding the originating session
// from delivery.
func NewTypingDiff(diff typing.Diff, excludeSession string) *Event {
	ev, _ := NewEvent(EventTypingDiff, diff)
	ev.excludeSession = excludeSession
	return ev
}

// NewRoomClosed is the terminal event for an expired room.
func NewRoomClosed(roomCode, reason string) *Event {
	ev, _ := NewEvent(EventRoomClosed, &RoomClosedPayload{RoomCode: roomCode, Reason: reason})
	return ev
}

// NewAck confirms a client frame.
func NewAck(requestID string, messageID int64) *Event {
	ev, _ := NewEvent(EventAck, &AckPayload{RequestID: requestID, Success: true, MessageID: messageID})
	return ev
}

// NewErrorEvent reports a failure to the client.
func NewErrorEvent(code int, message string) *Event {
	ev, _ := NewEvent(EventError, &ErrorPayload{Code: code, Message: message})
	return ev
}

// ParsePayload parses the event payload into the given type.
func (e *Event) ParsePayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}
