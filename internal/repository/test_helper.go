package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/roomcode"
)

// SetupTestDB opens a connection to the test database, creating the schema
// if needed. Tests skip when the database is unreachable so the suite still
// runs on machines without postgres.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := "host=localhost port=5432 user=postgres password=postgres dbname=secretchat_test sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping test, could not connect to test database: %v", err)
	}

	ctx := context.Background()
	for _, stmt := range SchemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to apply test schema: %v", err)
		}
	}

	return db
}

// NewTestRoomCode returns a fresh valid room code, registering cleanup that
// removes the room and its messages. Rooms are keyed by random codes, so
// parallel tests cannot collide.
func NewTestRoomCode(t *testing.T, db *sqlx.DB) string {
	t.Helper()

	code, err := roomcode.Generate()
	if err != nil {
		t.Fatalf("Failed to generate test room code: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = db.ExecContext(ctx, "DELETE FROM messages WHERE room_code = $1", code)
		_, _ = db.ExecContext(ctx, "DELETE FROM rooms WHERE code = $1", code)
	})

	return code
}

// CreateTestRoom ensures a room for a fresh code and returns it.
func CreateTestRoom(t *testing.T, db *sqlx.DB) *model.Room {
	t.Helper()

	code := NewTestRoomCode(t, db)
	room, err := NewRoomRepository(db).Ensure(context.Background(), code)
	if err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}

	return room
}

// AgeTestRoom rewinds a room's last_activity so expiry paths can be tested
// without sleeping through the inactivity window.
func AgeTestRoom(t *testing.T, db *sqlx.DB, code string, age time.Duration) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		"UPDATE rooms SET last_activity = $2 WHERE code = $1",
		code, time.Now().Add(-age),
	)
	if err != nil {
		t.Fatalf("Failed to age test room: %v", err)
	}
}
