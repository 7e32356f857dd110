package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	"github.com/tlettesaid-hue/secret-chat-1/internal/presence"
	"github.com/tlettesaid-hue/secret-chat-1/internal/typing"
	"go.uber.org/zap"
)

type roomEvent struct {
	roomCode string
	event    *Event
	remote   bool // arrived via the mirror; never re-published
}

// Hub multiplexes room events onto every open channel of a room. All
// registration, unregistration and publishing funnels through one Run loop,
// which is what makes per-room delivery order equal publish order.
type Hub struct {
	// Clients by room: roomCode -> clients
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	events     chan *roomEvent

	// Guards rooms for read-side queries (stats) off the Run loop.
	mu sync.RWMutex

	presence *presence.Tracker
	typing   *typing.Broadcaster

	// Cross-instance event mirror; nil in a single-node deployment.
	mirror *Mirror

	logger *zap.Logger
}

// NewHub creates a hub with its own presence tracker and typing
// broadcaster wired back into it.
func NewHub(typingTTL time.Duration, logger *zap.Logger) *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *roomEvent, 256),
		presence:   presence.NewTracker(),
		logger:     logger,
	}
	h.typing = typing.NewBroadcaster(typingTTL, h)
	return h
}

// SetMirror binds the cross-instance mirror. Bound once at startup.
func (h *Hub) SetMirror(m *Mirror) {
	h.mirror = m
}

// Run starts the hub loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case re := <-h.events:
			h.handleEvent(re)
		}
	}
}

// Publish queues an event for every open channel of a room.
func (h *Hub) Publish(roomCode string, event *Event) {
	h.events <- &roomEvent{roomCode: roomCode, event: event}
}

// MessageInserted fans out a freshly appended message. Implements
// service.Publisher.
func (h *Hub) MessageInserted(msg *model.Message) {
	h.Publish(msg.RoomCode, NewMessageInserted(msg))
}

// TypingChanged fans out a typing diff, excluding the originating session.
// Implements typing.Sink.
func (h *Hub) TypingChanged(roomCode string, diff typing.Diff, excludeSession string) {
	h.Publish(roomCode, NewTypingDiff(diff, excludeSession))
}

// RoomClosed delivers the terminal event for a reaped room and tears down
// its channels. Implements service.RoomCloser.
func (h *Hub) RoomClosed(roomCode string) {
	h.Publish(roomCode, NewRoomClosed(roomCode, "room expired"))
}

// SetTyping records a typing signal for a session.
func (h *Hub) SetTyping(roomCode, sessionID string, isTyping bool) {
	h.typing.Set(roomCode, sessionID, isTyping)
}

// PresenceCount returns how many sessions are connected to a room.
func (h *Hub) PresenceCount(roomCode string) int {
	return h.presence.Count(roomCode)
}

// PresenceMembers returns the session ids connected to a room.
func (h *Hub) PresenceMembers(roomCode string) []string {
	return h.presence.Members(roomCode)
}

// Stats returns hub statistics
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.rooms {
		total += len(clients)
	}

	return map[string]int{
		"active_rooms":  len(h.rooms),
		"total_clients": total,
	}
}

func (h *Hub) injectRemote(roomCode string, event *Event) {
	h.events <- &roomEvent{roomCode: roomCode, event: event, remote: true}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.rooms[client.roomCode] == nil {
		h.rooms[client.roomCode] = make(map[*Client]bool)
	}
	h.rooms[client.roomCode][client] = true
	h.mu.Unlock()

	h.logger.Info("Channel opened",
		zap.String("room_code", client.roomCode),
		zap.String("session_id", client.sessionID),
	)

	// Presence mutation and its diff go out together, before any later
	// event for this room, because both happen inside the Run loop.
	if diff := h.presence.Join(client.roomCode, client.sessionID); diff != nil {
		h.fanOut(&roomEvent{roomCode: client.roomCode, event: NewPresenceDiff(diff)})
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[client.roomCode]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.roomCode)
	}
	h.mu.Unlock()

	client.Close()
	h.typing.Clear(client.roomCode, client.sessionID)

	h.logger.Info("Channel closed",
		zap.String("room_code", client.roomCode),
		zap.String("session_id", client.sessionID),
	)

	if diff := h.presence.Leave(client.roomCode, client.sessionID); diff != nil {
		h.fanOut(&roomEvent{roomCode: client.roomCode, event: NewPresenceDiff(diff)})
	}
}

func (h *Hub) handleEvent(re *roomEvent) {
	if re.event.Type == EventRoomClosed {
		h.closeRoom(re)
		return
	}
	h.fanOut(re)
}

// fanOut delivers one event to every channel of the room except an excluded
// session, then mirrors locally-originated events to other instances.
func (h *Hub) fanOut(re *roomEvent) {
	data, err := json.Marshal(re.event)
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := h.rooms[re.roomCode]
	for client := range clients {
		if re.event.excludeSession != "" && client.sessionID == re.event.excludeSession {
			continue
		}
		client.enqueue(data)
	}
	h.mu.RUnlock()

	if !re.remote && h.mirror != nil {
		h.mirror.Publish(re.roomCode, re.event)
	}
}

// closeRoom delivers the terminal room.closed exactly once per open channel
// and then tears the channels down; their leave diffs have nobody left to
// reach, which is fine.
func (h *Hub) closeRoom(re *roomEvent) {
	h.fanOut(re)

	h.mu.Lock()
	clients := h.rooms[re.roomCode]
	delete(h.rooms, re.roomCode)
	h.mu.Unlock()

	for client := range clients {
		client.Close()
		h.typing.Clear(re.roomCode, client.sessionID)
		h.presence.Leave(re.roomCode, client.sessionID)
	}

	if len(clients) > 0 {
		h.logger.Info("Closed channels for expired room",
			zap.String("room_code", re.roomCode),
			zap.Int("channels", len(clients)),
		)
	}
}
