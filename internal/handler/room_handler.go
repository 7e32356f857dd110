package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tlettesaid-hue/secret-chat-1/internal/dto/request"
	"github.com/tlettesaid-hue/secret-chat-1/internal/dto/response"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/roomcode"
	"github.com/tlettesaid-hue/secret-chat-1/internal/service"
)

type RoomHandler struct {
	roomService      *service.RoomService
	inactivityWindow time.Duration
}

func NewRoomHandler(roomService *service.RoomService, inactivityWindow time.Duration) *RoomHandler {
	return &RoomHandler{
		roomService:      roomService,
		inactivityWindow: inactivityWindow,
	}
}

// Ensure godoc
// @Summary Ensure a room
// @Description Creates the room if it does not exist and returns it. Idempotent: ensuring an existing code is a no-op. When no code is given the server generates one.
// @Tags rooms
// @Accept json
// @Produce json
// @Param request body request.EnsureRoomRequest false "Room code, optional"
// @Success 200 {object} response.Response{data=response.RoomResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/rooms [post]
func (h *RoomHandler) Ensure(c *gin.Context) {
	// The body is optional; an empty POST asks for a generated code.
	var req request.EnsureRoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request format")
			return
		}
	}

	code := req.Code
	if code == "" {
		generated, err := roomcode.Generate()
		if err != nil {
			response.InternalError(c, "")
			return
		}
		code = generated
	}

	room, err := h.roomService.Ensure(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomResponse(room, h.inactivityWindow))
}

// Get godoc
// @Summary Get a room
// @Description Returns the room with its expiry countdown anchor. Expired rooms return 404.
// @Tags rooms
// @Produce json
// @Param code path string true "Room code (16 alphanumeric characters)"
// @Success 200 {object} response.Response{data=response.RoomResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{code} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.roomService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewRoomResponse(room, h.inactivityWindow))
}
