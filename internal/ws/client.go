package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	apperrors "github.com/tlettesaid-hue/secret-chat-1/internal/pkg/errors"
	"github.com/tlettesaid-hue/secret-chat-1/internal/service"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxFrameSize = 64 << 10

	// Send buffer size
	sendBufferSize = 256
)

// Client is one live channel: a websocket connection bound to exactly one
// room and one ephemeral session. The session id exists only for the
// connection's lifetime.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	roomCode  string
	sessionID string

	// Guards closed. The hub tears a channel down while the read pump may
	// still be replying to an in-flight frame; enqueue after close must be
	// a drop, not a send on a closed channel.
	mu     sync.Mutex
	closed bool

	messages *service.MessageService

	logger *zap.Logger
}

// NewClient creates a client bound to a room and session.
func NewClient(hub *Hub, conn *websocket.Conn, roomCode, sessionID string, messages *service.MessageService, logger *zap.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		roomCode:  roomCode,
		sessionID: sessionID,
		messages:  messages,
		logger:    logger,
	}
}

// SessionID returns the channel's ephemeral session id.
func (c *Client) SessionID() string {
	return c.sessionID
}

// RoomCode returns the room this channel is bound to.
func (c *Client) RoomCode() string {
	return c.roomCode
}

// ReadPump pumps frames from the connection into the hub and services.
// When it returns the channel unregisters, which fires the presence leave
// exactly once even if an explicit close raced the disconnect.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error",
					zap.String("session_id", c.sessionID),
					zap.Error(err),
				)
			}
			break
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("Failed to parse frame",
				zap.String("session_id", c.sessionID),
				zap.Error(err),
			)
			c.sendError(400, "invalid frame format")
			continue
		}

		c.handleFrame(&ev)
	}
}

// WritePump pumps events from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Flush queued events into the same websocket frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(ev *Event) {
	switch ev.Type {
	case FrameSendMessage:
		c.handleSendMessage(ev)
	case FrameTyping:
		c.hub.SetTyping(c.roomCode, c.sessionID, true)
	case FrameStopTyping:
		c.hub.SetTyping(c.roomCode, c.sessionID, false)
	case FramePing:
		pong, _ := NewEvent(EventPong, nil)
		c.SendEvent(pong)
	default:
		c.sendError(400, "unknown frame type")
	}
}

func (c *Client) handleSendMessage(ev *Event) {
	var payload SendMessagePayload
	if err := ev.ParsePayload(&payload); err != nil {
		c.sendError(400, "invalid frame payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, err := c.messages.Append(ctx, &service.AppendInput{
		RoomCode: c.roomCode,
		SenderID: c.sessionID,
		Type:     messageType(payload.Type),
		Content:  payload.Content,
		Metadata: payload.Metadata,
	})
	if err != nil {
		c.sendError(apperrors.GetHTTPStatus(err), apperrors.GetMessage(err))
		return
	}

	// Sender also receives the fan-out; the ack carries the assigned id so
	// the client can de-duplicate its own message.
	ack := NewAck(ev.RequestID, msg.ID)
	c.SendEvent(ack)

	// A send implies the sender stopped typing.
	c.hub.SetTyping(c.roomCode, c.sessionID, false)
}

// SendEvent marshals and queues one event for this channel only.
func (c *Client) SendEvent(ev *Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("Failed to marshal event",
			zap.String("session_id", c.sessionID),
			zap.Error(err),
		)
		return
	}
	c.enqueue(data)
}

// enqueue hands pre-marshaled bytes to the write pump. A full buffer means
// a slow client; the event is dropped and recovered later via the durable
// log, never queued past a disconnect. After Close, late events (a pong or
// error reply racing room teardown) are dropped silently.
func (c *Client) enqueue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("Client send buffer full, dropping event",
			zap.String("room_code", c.roomCode),
			zap.String("session_id", c.sessionID),
		)
	}
}

// messageType maps the wire type string; empty defaults to text and
// anything unknown is passed through for the service to reject.
func messageType(s string) model.MessageType {
	if s == "" {
		return model.MessageTypeText
	}
	return model.MessageType(s)
}

func (c *Client) sendError(code int, message string) {
	c.SendEvent(NewErrorEvent(code, message))
}

// Close closes the outbound pipe. Called by the hub; idempotent, and safe
// against a read pump still replying to in-flight frames.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
