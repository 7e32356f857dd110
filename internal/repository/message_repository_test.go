package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
)

func testMessage(roomCode, content string) *model.Message {
	return &model.Message{
		RoomCode: roomCode,
		Type:     model.MessageTypeText,
		Content:  content,
		SenderID: uuid.New().String(),
	}
}

func TestMessageRepository_Append(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := NewMessageRepository(db)
	room := CreateTestRoom(t, db)
	ctx := context.Background()

	msg := testMessage(room.Code, "hello")
	if err := repo.Append(ctx, msg); err != nil {
		t.Fatalf("Failed to append message: %v", err)
	}

	if msg.ID == 0 {
		t.Error("Expected server-assigned id")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("Expected server-assigned created_at")
	}
}

func TestMessageRepository_Append_MissingRoom(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := NewMessageRepository(db)
	code := NewTestRoomCode(t, db)

	err := repo.Append(context.Background(), testMessage(code, "orphan"))
	if err != ErrMessageRoomMissing {
		t.Errorf("Expected ErrMessageRoomMissing, got %v", err)
	}
}

func TestMessageRepository_ListSince_AppendOrder(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := NewMessageRepository(db)
	room := CreateTestRoom(t, db)
	ctx := context.Background()

	const n = 10
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		msg := testMessage(room.Code, fmt.Sprintf("message %d", i))
		if err := repo.Append(ctx, msg); err != nil {
			t.Fatalf("Failed to append message %d: %v", i, err)
		}
		ids = append(ids, msg.ID)
	}

	messages, err := repo.ListSince(ctx, room.Code, 0)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}

	if len(messages) != n {
		t.Fatalf("Expected %d messages, got %d", n, len(messages))
	}

	for i, msg := range messages {
		if msg.ID != ids[i] {
			t.Errorf("Position %d: expected id %d, got %d", i, ids[i], msg.ID)
		}
		if msg.Content != fmt.Sprintf("message %d", i) {
			t.Errorf("Position %d: unexpected content %q", i, msg.Content)
		}
	}
}

func TestMessageRepository_ListSince_AfterID(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := NewMessageRepository(db)
	room := CreateTestRoom(t, db)
	ctx := context.Background()

	first := testMessage(room.Code, "first")
	second := testMessage(room.Code, "second")
	for _, m := range []*model.Message{first, second} {
		if err := repo.Append(ctx, m); err != nil {
			t.Fatalf("Failed to append message: %v", err)
		}
	}

	messages, err := repo.ListSince(ctx, room.Code, first.ID)
	if err != nil {
		t.Fatalf("Failed to list messages since: %v", err)
	}

	if len(messages) != 1 {
		t.Fatalf("Expected 1 message after id %d, got %d", first.ID, len(messages))
	}
	if messages[0].ID != second.ID {
		t.Errorf("Expected id %d, got %d", second.ID, messages[0].ID)
	}
}

func TestMessageRepository_RoundTrip_Metadata(t *testing.T) {
	db := SetupTestDB(t)
	defer db.Close()

	repo := NewMessageRepository(db)
	room := CreateTestRoom(t, db)
	ctx := context.Background()

	msg := &model.Message{
		RoomCode: room.Code,
		Type:     model.MessageTypeFile,
		Content:  "https://example.com/report.pdf",
		SenderID: uuid.New().String(),
		Metadata: model.NullMetadata{
			Valid:    true,
			Metadata: model.Metadata{Name: "report.pdf", Size: 1 << 20},
		},
	}
	if err := repo.Append(ctx, msg); err != nil {
		t.Fatalf("Failed to append file message: %v", err)
	}

	messages, err := repo.ListSince(ctx, room.Code, 0)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}

	got := messages[0]
	if got.ID != msg.ID || got.RoomCode != msg.RoomCode || got.Type != msg.Type ||
		got.Content != msg.Content || got.SenderID != msg.SenderID {
		t.Errorf("Round-trip mismatch: appended %+v, read %+v", msg, got)
	}
	if !got.Metadata.Valid {
		t.Fatal("Expected metadata to survive the round trip")
	}
	if got.Metadata.Metadata.Name != "report.pdf" || got.Metadata.Metadata.Size != 1<<20 {
		t.Errorf("Unexpected metadata: %+v", got.Metadata.Metadata)
	}
}
