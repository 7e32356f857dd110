package service

import (
	"context"
	"errors"
	"time"

	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	apperrors "github.com/tlettesaid-hue/secret-chat-1/internal/pkg/errors"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/roomcode"
	"github.com/tlettesaid-hue/secret-chat-1/internal/repository"
	"go.uber.org/zap"
)

type RoomService struct {
	roomRepo *repository.RoomRepository
	logger   *zap.Logger
}

func NewRoomService(roomRepo *repository.RoomRepository, logger *zap.Logger) *RoomService {
	return &RoomService{
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// Ensure creates the room if needed and returns it. Idempotent: ensuring an
// existing code succeeds without refreshing its activity.
func (s *RoomService) Ensure(ctx context.Context, code string) (*model.Room, error) {
	if !roomcode.Validate(code) {
		return nil, apperrors.ErrInvalidCode
	}

	room, err := s.roomRepo.Ensure(ctx, code)
	if err != nil {
		s.logger.Error("Failed to ensure room", zap.String("room_code", code), zap.Error(err))
		return nil, apperrors.ErrStorageFailure
	}

	return room, nil
}

// Get retrieves a room by code.
func (s *RoomService) Get(ctx context.Context, code string) (*model.Room, error) {
	if !roomcode.Validate(code) {
		return nil, apperrors.ErrInvalidCode
	}

	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		s.logger.Error("Failed to get room", zap.String("room_code", code), zap.Error(err))
		return nil, apperrors.ErrStorageFailure
	}

	return room, nil
}

// Touch refreshes a room's last_activity. A missing room is logged, not
// surfaced: the send that triggered the touch already won its race.
func (s *RoomService) Touch(ctx context.Context, code string, now time.Time) {
	if err := s.roomRepo.Touch(ctx, code, now); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			s.logger.Warn("Touch on missing room", zap.String("room_code", code))
			return
		}
		s.logger.Error("Failed to touch room activity", zap.String("room_code", code), zap.Error(err))
	}
}
