package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/cache"
	"go.uber.org/zap"
)

// Mirror relays room events between instances over redis pub/sub. Presence
// and typing are node-local, so without the mirror two instances would show
// each other's rooms as empty. Message fan-out stays at-least-once: the
// durable log, not the mirror, is the recovery path.
type Mirror struct {
	client *redis.Client
	hub    *Hub

	// instanceID tags outbound envelopes so the subscriber can drop its
	// own echoes.
	instanceID string

	logger *zap.Logger
}

type mirrorEnvelope struct {
	Instance string `json:"instance"`
	RoomCode string `json:"room_code"`
	Event    *Event `json:"event"`
}

// NewMirror creates a mirror bound to a hub.
func NewMirror(client *redis.Client, hub *Hub, logger *zap.Logger) *Mirror {
	return &Mirror{
		client:     client,
		hub:        hub,
		instanceID: uuid.New().String(),
		logger:     logger,
	}
}

// Publish relays one locally-originated event to other instances.
// Delivery is best-effort; a failed relay is logged and dropped.
func (m *Mirror) Publish(roomCode string, event *Event) {
	data, err := json.Marshal(&mirrorEnvelope{
		Instance: m.instanceID,
		RoomCode: roomCode,
		Event:    event,
	})
	if err != nil {
		m.logger.Error("Failed to marshal mirror envelope", zap.Error(err))
		return
	}

	ctx := context.Background()
	if err := m.client.Publish(ctx, cache.RoomChannel(roomCode), data).Err(); err != nil {
		m.logger.Warn("Failed to mirror event",
			zap.String("room_code", roomCode),
			zap.Error(err),
		)
	}
}

// Run consumes mirrored events from other instances until the context is
// cancelled.
func (m *Mirror) Run(ctx context.Context) {
	pubsub := m.client.PSubscribe(ctx, cache.RoomChannel("*"))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env mirrorEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				m.logger.Warn("Failed to parse mirror envelope", zap.Error(err))
				continue
			}

			if env.Instance == m.instanceID || env.Event == nil {
				continue
			}

			m.hub.injectRemote(env.RoomCode, env.Event)
		}
	}
}
