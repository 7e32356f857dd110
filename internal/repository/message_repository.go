package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
)

var (
	ErrMessageRoomMissing = errors.New("message references a missing room")
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts a message and fills in the server-assigned id and
// created_at. The FK to rooms rejects appends to nonexistent rooms; that
// surfaces as ErrMessageRoomMissing.
func (r *MessageRepository) Append(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO messages (room_code, type, content, metadata, sender_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		msg.RoomCode,
		msg.Type,
		msg.Content,
		msg.Metadata,
		msg.SenderID,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrMessageRoomMissing
		}
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

// ListSince returns a room's messages in append order. afterID 0 returns
// the full snapshot; a positive afterID returns only later messages, which
// is how reconnecting clients reconcile gaps.
func (r *MessageRepository) ListSince(ctx context.Context, roomCode string, afterID int64) ([]*model.Message, error) {
	query := `
		SELECT * FROM messages
		WHERE room_code = $1 AND id > $2
		ORDER BY id ASC`

	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, query, roomCode, afterID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

// CountByRoom counts messages in a room
func (r *MessageRepository) CountByRoom(ctx context.Context, roomCode string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE room_code = $1`

	if err := r.db.GetContext(ctx, &count, query, roomCode); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}

// DeleteByRoom removes all messages of a room. Normally covered by the
// cascade in RoomRepository.Delete; kept for targeted cleanup.
func (r *MessageRepository) DeleteByRoom(ctx context.Context, roomCode string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE room_code = $1`, roomCode); err != nil {
		return fmt.Errorf("failed to delete room messages: %w", err)
	}
	return nil
}

// isForeignKeyViolation matches postgres error class 23503.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
