package response

import (
	"time"

	"github.com/tlettesaid-hue/secret-chat-1/internal/model"
)

// RoomResponse represents a room response
type RoomResponse struct {
	Code         string `json:"code"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity"`
	ExpiresAt    string `json:"expires_at"`
}

// NewRoomResponse creates a room response from model
func NewRoomResponse(room *model.Room, inactivityWindow time.Duration) *RoomResponse {
	return &RoomResponse{
		Code:         room.Code,
		CreatedAt:    room.CreatedAt.Format(time.RFC3339),
		LastActivity: room.LastActivity.Format(time.RFC3339),
		ExpiresAt:    room.ExpiresAt(inactivityWindow).Format(time.RFC3339),
	}
}

// MessageResponse represents a message response
type MessageResponse struct {
	ID        int64           `json:"id"`
	RoomCode  string          `json:"room_code"`
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	Metadata  *model.Metadata `json:"metadata,omitempty"`
	SenderID  string          `json:"sender_id"`
	CreatedAt string          `json:"created_at"`
}

// NewMessageResponse creates a message response from model
func NewMessageResponse(msg *model.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:        msg.ID,
		RoomCode:  msg.RoomCode,
		Type:      string(msg.Type),
		Content:   msg.Content,
		SenderID:  msg.SenderID,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
	}

	if msg.Metadata.Valid {
		m := msg.Metadata.Metadata
		resp.Metadata = &m
	}

	return resp
}

// NewMessageListResponse creates message responses from models
func NewMessageListResponse(msgs []*model.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, NewMessageResponse(msg))
	}
	return out
}

// UploadResponse represents a stored attachment
type UploadResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}
