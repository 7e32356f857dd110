package handler

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tlettesaid-hue/secret-chat-1/internal/dto/response"
	apperrors "github.com/tlettesaid-hue/secret-chat-1/internal/pkg/errors"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/storage"
	"github.com/tlettesaid-hue/secret-chat-1/internal/service"
	"go.uber.org/zap"
)

type UploadHandler struct {
	store       storage.ObjectStore
	roomService *service.RoomService
	urlExpiry   time.Duration
	logger      *zap.Logger
}

func NewUploadHandler(store storage.ObjectStore, roomService *service.RoomService, urlExpiry time.Duration, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		store:       store,
		roomService: roomService,
		urlExpiry:   urlExpiry,
		logger:      logger,
	}
}

// Upload godoc
// @Summary Upload an attachment
// @Description Stores an image or file blob and returns a pre-signed URL plus the metadata for the follow-up message. Blobs over 5MB are rejected at the boundary.
// @Tags messages
// @Accept multipart/form-data
// @Produce json
// @Param code path string true "Room code"
// @Param file formData file true "Attachment, at most 5MB"
// @Success 201 {object} response.Response{data=response.UploadResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /api/v1/rooms/{code}/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	roomCode := c.Param("code")

	if _, err := h.roomService.Get(c.Request.Context(), roomCode); err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}

	if fileHeader.Size > service.MaxAttachmentSize {
		response.Error(c, apperrors.ErrPayloadTooLarge)
		return
	}
	if fileHeader.Size == 0 {
		response.BadRequest(c, "file is empty")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		response.Error(c, apperrors.ErrStorageFailure)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Objects are keyed by room; the key never leaves the server, clients
	// only ever see the pre-signed URL.
	name := filepath.Base(fileHeader.Filename)
	key := fmt.Sprintf("%s/%s%s", roomCode, uuid.New().String(), strings.ToLower(filepath.Ext(name)))

	if err := h.store.Put(c.Request.Context(), key, file, fileHeader.Size, contentType); err != nil {
		h.logger.Error("Failed to store attachment",
			zap.String("room_code", roomCode),
			zap.Error(err),
		)
		response.Error(c, apperrors.ErrStorageFailure)
		return
	}

	url, err := h.store.PresignGet(c.Request.Context(), key, h.urlExpiry)
	if err != nil {
		h.logger.Error("Failed to presign attachment", zap.String("key", key), zap.Error(err))
		response.Error(c, apperrors.ErrStorageFailure)
		return
	}

	response.Created(c, &response.UploadResponse{
		URL:  url,
		Name: name,
		Size: fileHeader.Size,
	})
}
