package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	apperrors "github.com/tlettesaid-hue/secret-chat-1/internal/pkg/errors"
	"github.com/tlettesaid-hue/secret-chat-1/internal/service"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Rooms are addressed by unguessable codes; any origin may connect.
		return true
	},
}

// Handler handles WebSocket channel-open requests
type Handler struct {
	hub      *Hub
	rooms    *service.RoomService
	messages *service.MessageService
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, rooms *service.RoomService, messages *service.MessageService, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		rooms:    rooms,
		messages: messages,
		logger:   logger,
	}
}

// ServeWS opens a channel on a room
// @Summary Open a realtime channel
// @Description Upgrades to WebSocket and subscribes to a room's event stream. Fetch the message snapshot first; reconcile by message id.
// @Tags realtime
// @Param room query string true "Room code (16 alphanumeric characters)"
// @Param session_id query string false "Session id; generated when absent"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /ws [get]
func (h *Handler) ServeWS(c *gin.Context) {
	roomCode := c.Query("room")

	// The room must already exist: clients ensure it over HTTP before
	// opening the channel.
	if _, err := h.rooms.Get(c.Request.Context(), roomCode); err != nil {
		c.JSON(apperrors.GetHTTPStatus(err), gin.H{"error": apperrors.GetMessage(err)})
		return
	}

	// The session id is connection-scoped; accept the client's random id
	// or mint one.
	sessionID := c.Query("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.New().String()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket",
			zap.String("room_code", roomCode),
			zap.Error(err),
		)
		return
	}

	client := NewClient(h.hub, conn, roomCode, sessionID, h.messages, h.logger)

	h.hub.register <- client

	go client.WritePump()
	go client.ReadPump()
}

// GetStats returns hub statistics
// @Summary Hub statistics
// @Description Number of active rooms and open channels on this instance
// @Tags realtime
// @Produce json
// @Success 200 {object} map[string]int
// @Router /api/v1/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.hub.Stats(),
	})
}

// GetPresence returns who is connected to a room
// @Summary Room presence
// @Description Session ids currently connected to a room on this instance
// @Tags realtime
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/rooms/{code}/presence [get]
func (h *Handler) GetPresence(c *gin.Context) {
	roomCode := c.Param("code")

	if _, err := h.rooms.Get(c.Request.Context(), roomCode); err != nil {
		c.JSON(apperrors.GetHTTPStatus(err), gin.H{"error": apperrors.GetMessage(err)})
		return
	}

	members := h.hub.PresenceMembers(roomCode)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"room_code": roomCode,
			"members":   members,
			"count":     len(members),
		},
	})
}
