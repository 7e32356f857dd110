package service

import (
	"context"
	"time"

	"github.com/tlettesaid-hue/secret-chat-1/internal/repository"
	"go.uber.org/zap"
)

// RoomCloser is notified after a room's durable state is gone, so open
// channels receive a terminal room.closed before being torn down. The hub
// implements it.
type RoomCloser interface {
	RoomClosed(roomCode string)
}

// ReaperService deletes rooms whose last activity exceeds the inactivity
// window, cascading their messages.
type ReaperService struct {
	roomRepo         *repository.RoomRepository
	closer           RoomCloser
	inactivityWindow time.Duration
	interval         time.Duration
	logger           *zap.Logger
}

func NewReaperService(
	roomRepo *repository.RoomRepository,
	closer RoomCloser,
	inactivityWindow time.Duration,
	interval time.Duration,
	logger *zap.Logger,
) *ReaperService {
	return &ReaperService{
		roomRepo:         roomRepo,
		closer:           closer,
		inactivityWindow: inactivityWindow,
		interval:         interval,
		logger:           logger,
	}
}

// Run sweeps on a fixed tick until the context is cancelled.
func (s *ReaperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Room reaper started",
		zap.Duration("inactivity_window", s.inactivityWindow),
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Room reaper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one reap pass. A failure on one room does not stop the pass;
// the room stays for the next tick.
func (s *ReaperService) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.inactivityWindow)

	rooms, err := s.roomRepo.ListExpired(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to list expired rooms", zap.Error(err))
		return
	}

	for _, room := range rooms {
		if err := s.roomRepo.Delete(ctx, room.Code); err != nil {
			s.logger.Error("Failed to delete expired room",
				zap.String("room_code", room.Code),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Reaped expired room",
			zap.String("room_code", room.Code),
			zap.Time("last_activity", room.LastActivity),
		)

		if s.closer != nil {
			s.closer.RoomClosed(room.Code)
		}
	}
}
