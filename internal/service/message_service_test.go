package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
	apperrors "github.com/tlettesaid-hue/secret-chat-1/internal/pkg/errors"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/roomcode"
	"github.com/tlettesaid-hue/secret-chat-1/internal/repository"
	"go.uber.org/zap"
)

type capturePublisher struct {
	published []*model.Message
}

func (p *capturePublisher) MessageInserted(msg *model.Message) {
	p.published = append(p.published, msg)
}

func newMessageTestService(t *testing.T) (*MessageService, *capturePublisher, string) {
	t.Helper()

	db := repository.SetupTestDB(t)
	t.Cleanup(func() { db.Close() })

	roomRepo := repository.NewRoomRepository(db)
	svc := NewMessageService(repository.NewMessageRepository(db), roomRepo, zap.NewNop())

	pub := &capturePublisher{}
	svc.SetPublisher(pub)

	room := repository.CreateTestRoom(t, db)
	return svc, pub, room.Code
}

func TestMessageService_Append_DefaultsToText(t *testing.T) {
	svc, pub, code := newMessageTestService(t)

	msg, err := svc.Append(context.Background(), &AppendInput{
		RoomCode: code,
		SenderID: uuid.New().String(),
		Content:  "hello",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if msg.Type != model.MessageTypeText {
		t.Errorf("type = %s, want text", msg.Type)
	}
	if msg.ID == 0 {
		t.Error("expected server-assigned id")
	}
	if len(pub.published) != 1 || pub.published[0].ID != msg.ID {
		t.Errorf("expected exactly the appended message to be published, got %d", len(pub.published))
	}
}

func TestMessageService_Append_Validation(t *testing.T) {
	svc, pub, code := newMessageTestService(t)
	sender := uuid.New().String()

	cases := []struct {
		name    string
		input   *AppendInput
		wantErr error
	}{
		{
			name:    "empty content",
			input:   &AppendInput{RoomCode: code, SenderID: sender, Content: "   "},
			wantErr: apperrors.ErrEmptyContent,
		},
		{
			name:    "unknown type",
			input:   &AppendInput{RoomCode: code, SenderID: sender, Type: "sticker", Content: "x"},
			wantErr: apperrors.ErrInvalidMessageType,
		},
		{
			name:    "system type from client",
			input:   &AppendInput{RoomCode: code, SenderID: sender, Type: model.MessageTypeSystem, Content: "x"},
			wantErr: apperrors.ErrInvalidMessageType,
		},
		{
			name:    "file without metadata",
			input:   &AppendInput{RoomCode: code, SenderID: sender, Type: model.MessageTypeFile, Content: "url"},
			wantErr: apperrors.ErrMissingMetadata,
		},
		{
			name: "file over size ceiling",
			input: &AppendInput{
				RoomCode: code, SenderID: sender, Type: model.MessageTypeFile, Content: "url",
				Metadata: &model.Metadata{Name: "big.zip", Size: MaxAttachmentSize + 1},
			},
			wantErr: apperrors.ErrPayloadTooLarge,
		},
		{
			name: "image over size ceiling",
			input: &AppendInput{
				RoomCode: code, SenderID: sender, Type: model.MessageTypeImage, Content: "url",
				Metadata: &model.Metadata{Name: "big.png", Size: MaxAttachmentSize + 1},
			},
			wantErr: apperrors.ErrPayloadTooLarge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Append(context.Background(), tc.input); !errors.Is(err, tc.wantErr) {
				t.Errorf("Append error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if len(pub.published) != 0 {
		t.Errorf("rejected messages must not be published, got %d", len(pub.published))
	}
}

func TestMessageService_Append_MissingRoom(t *testing.T) {
	svc, _, _ := newMessageTestService(t)

	code, err := roomcode.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = svc.Append(context.Background(), &AppendInput{
		RoomCode: code,
		SenderID: uuid.New().String(),
		Content:  "hello",
	})
	if !errors.Is(err, apperrors.ErrRoomNotFound) {
		t.Errorf("Append error = %v, want ErrRoomNotFound", err)
	}
}

func TestMessageService_Append_FileWithMetadata(t *testing.T) {
	svc, _, code := newMessageTestService(t)

	msg, err := svc.Append(context.Background(), &AppendInput{
		RoomCode: code,
		SenderID: uuid.New().String(),
		Type:     model.MessageTypeFile,
		Content:  "https://storage.example/attachments/report.pdf",
		Metadata: &model.Metadata{Name: "report.pdf", Size: 1024},
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if !msg.Metadata.Valid {
		t.Fatal("expected metadata to be stored")
	}
	if msg.Metadata.Metadata.Name != "report.pdf" || msg.Metadata.Metadata.Size != 1024 {
		t.Errorf("metadata round trip = %+v", msg.Metadata.Metadata)
	}
}

func TestMessageService_ListSince(t *testing.T) {
	svc, _, code := newMessageTestService(t)
	sender := uuid.New().String()

	var ids []int64
	for _, content := range []string{"one", "two", "three"} {
		msg, err := svc.Append(context.Background(), &AppendInput{
			RoomCode: code,
			SenderID: sender,
			Content:  content,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		ids = append(ids, msg.ID)
	}

	all, err := svc.ListSince(context.Background(), code, 0)
	if err != nil {
		t.Fatalf("ListSince failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, msg := range all {
		if msg.ID != ids[i] {
			t.Errorf("message %d id = %d, want %d (append order)", i, msg.ID, ids[i])
		}
	}

	tail, err := svc.ListSince(context.Background(), code, ids[0])
	if err != nil {
		t.Fatalf("ListSince failed: %v", err)
	}
	if len(tail) != 2 || tail[0].ID != ids[1] {
		t.Errorf("ListSince after first id returned %d messages", len(tail))
	}
}
