package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	apperrors "github.com/tlettesaid-hue/secret-chat-1/internal/pkg/errors"
	"github.com/tlettesaid-hue/secret-chat-1/internal/repository"
	"go.uber.org/zap"
)

// MaxAttachmentSize is the boundary ceiling for image/file payloads.
const MaxAttachmentSize = 5 << 20 // 5 MB

// Publisher receives every successfully appended message for fan-out to
// room subscribers. The hub implements it.
type Publisher interface {
	MessageInserted(msg *model.Message)
}

type MessageService struct {
	messageRepo *repository.MessageRepository
	roomRepo    *repository.RoomRepository
	publisher   Publisher
	logger      *zap.Logger
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	roomRepo *repository.RoomRepository,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		roomRepo:    roomRepo,
		logger:      logger,
	}
}

// SetPublisher binds the fan-out sink. Bound once at startup, after the hub
// exists; a nil publisher (tests) skips fan-out.
func (s *MessageService) SetPublisher(p Publisher) {
	s.publisher = p
}

// AppendInput represents a message append request
type AppendInput struct {
	RoomCode string
	SenderID string
	Type     model.MessageType
	Content  string
	Metadata *model.Metadata
}

// Append validates, persists and fans out one message. The stored record
// comes back with server-assigned id and created_at; append order is the
// order every reader sees.
func (s *MessageService) Append(ctx context.Context, input *AppendInput) (*model.Message, error) {
	if input.Type == "" {
		input.Type = model.MessageTypeText
	}

	// System messages are server-synthesized; this is the client boundary.
	if !input.Type.Valid() || input.Type == model.MessageTypeSystem {
		return nil, apperrors.ErrInvalidMessageType
	}

	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.ErrEmptyContent
	}

	switch input.Type {
	case model.MessageTypeFile:
		if input.Metadata == nil {
			return nil, apperrors.ErrMissingMetadata
		}
		if input.Metadata.Size > MaxAttachmentSize {
			return nil, apperrors.ErrPayloadTooLarge
		}
	case model.MessageTypeImage:
		if input.Metadata != nil && input.Metadata.Size > MaxAttachmentSize {
			return nil, apperrors.ErrPayloadTooLarge
		}
	}

	// Reject sends to rooms that never existed or already expired.
	if _, err := s.roomRepo.GetByCode(ctx, input.RoomCode); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to check room before append", zap.Error(err))
		return nil, apperrors.ErrStorageFailure
	}

	msg := &model.Message{
		RoomCode: input.RoomCode,
		Type:     input.Type,
		Content:  input.Content,
		SenderID: input.SenderID,
	}
	if input.Metadata != nil {
		msg.Metadata = model.NullMetadata{Metadata: *input.Metadata, Valid: true}
	}

	if err := s.messageRepo.Append(ctx, msg); err != nil {
		// The reaper can win the race between the existence check and the
		// insert; the FK violation is the room-expired signal then.
		if errors.Is(err, repository.ErrMessageRoomMissing) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to append message",
			zap.String("room_code", input.RoomCode),
			zap.Error(err),
		)
		return nil, apperrors.ErrStorageFailure
	}

	// Accepted messages keep the room alive.
	if err := s.roomRepo.Touch(ctx, input.RoomCode, msg.CreatedAt); err != nil {
		s.logger.Warn("Failed to touch room after append",
			zap.String("room_code", input.RoomCode),
			zap.Error(err),
		)
	}

	if s.publisher != nil {
		s.publisher.MessageInserted(msg)
	}

	return msg, nil
}

// ListSince returns a room's messages in append order. afterID 0 means the
// full snapshot; clients reconcile reconnect gaps by passing the last id
// they saw and de-duplicating by id.
func (s *MessageService) ListSince(ctx context.Context, roomCode string, afterID int64) ([]*model.Message, error) {
	if _, err := s.roomRepo.GetByCode(ctx, roomCode); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to check room before list", zap.Error(err))
		return nil, apperrors.ErrStorageFailure
	}

	messages, err := s.messageRepo.ListSince(ctx, roomCode, afterID)
	if err != nil {
		s.logger.Error("Failed to list messages", zap.String("room_code", roomCode), zap.Error(err))
		return nil, apperrors.ErrStorageFailure
	}

	return messages, nil
}
