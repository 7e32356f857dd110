package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

type RoomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Ensure creates the room if it does not exist and returns the stored
// record. Creating an already-existing code is not an error and does not
// refresh its activity.
func (r *RoomRepository) Ensure(ctx context.Context, code string) (*model.Room, error) {
	query := `
		INSERT INTO rooms (code)
		VALUES ($1)
		ON CONFLICT (code) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return nil, fmt.Errorf("failed to ensure room: %w", err)
	}

	return r.GetByCode(ctx, code)
}

// GetByCode retrieves a room by code
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	var room model.Room
	query := `SELECT * FROM rooms WHERE code = $1`

	if err := r.db.GetContext(ctx, &room, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by code: %w", err)
	}

	return &room, nil
}

// Touch updates last_activity. Callers must have ensured the room first;
// a missing room here is a programming error, surfaced as ErrRoomNotFound.
func (r *RoomRepository) Touch(ctx context.Context, code string, now time.Time) error {
	query := `UPDATE rooms SET last_activity = $2 WHERE code = $1`

	result, err := r.db.ExecContext(ctx, query, code, now)
	if err != nil {
		return fmt.Errorf("failed to touch room activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRoomNotFound
	}

	return nil
}

// ListExpired returns rooms whose last activity is older than cutoff.
// Used only by the reaper.
func (r *RoomRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]*model.Room, error) {
	query := `SELECT * FROM rooms WHERE last_activity < $1 ORDER BY last_activity`

	var rooms []*model.Room
	if err := r.db.SelectContext(ctx, &rooms, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to list expired rooms: %w", err)
	}

	return rooms, nil
}

// Delete removes a room and cascades to its messages. Idempotent: deleting
// an absent room is a no-op.
func (r *RoomRepository) Delete(ctx context.Context, code string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete tx: %w", err)
	}
	defer tx.Rollback()

	// The FK is ON DELETE CASCADE; the explicit delete keeps the cascade
	// visible and works against schemas migrated without it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE room_code = $1`, code); err != nil {
		return fmt.Errorf("failed to delete room messages: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE code = $1`, code); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit room delete: %w", err)
	}

	return nil
}

// Count counts all rooms
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM rooms`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	return count, nil
}
