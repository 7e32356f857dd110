package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tlettesaid-hue/secret-chat-1/internal/dto/request"
	"github.com/tlettesaid-hue/secret-chat-1/internal/dto/response"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	"github.com/tlettesaid-hue/secret-chat-1/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// List godoc
// @Summary List room messages
// @Description Returns messages in append order. Pass after_id to fetch only messages newer than the last one seen; reconcile reconnect gaps by de-duplicating on id.
// @Tags messages
// @Produce json
// @Param code path string true "Room code"
// @Param after_id query int false "Return only messages with id greater than this"
// @Success 200 {object} response.Response{data=[]response.MessageResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{code}/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	afterID, err := strconv.ParseInt(c.DefaultQuery("after_id", "0"), 10, 64)
	if err != nil || afterID < 0 {
		response.BadRequest(c, "after_id must be a non-negative integer")
		return
	}

	messages, err := h.messageService.ListSince(c.Request.Context(), c.Param("code"), afterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, response.NewMessageListResponse(messages))
}

// Send godoc
// @Summary Append a message
// @Description Appends one message to the room's log and fans it out to every open channel. The HTTP path exists for clients without a live channel; the response carries the server-assigned id.
// @Tags messages
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body request.SendMessageRequest true "Message"
// @Success 201 {object} response.Response{data=response.MessageResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /api/v1/rooms/{code}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request format")
		return
	}

	input := &service.AppendInput{
		RoomCode: c.Param("code"),
		SenderID: req.SenderID,
		Type:     model.MessageType(req.Type),
		Content:  req.Content,
	}
	if req.Metadata != nil {
		input.Metadata = &model.Metadata{
			Name: req.Metadata.Name,
			Size: req.Metadata.Size,
		}
	}

	msg, err := h.messageService.Append(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, response.NewMessageResponse(msg))
}
