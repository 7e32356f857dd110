package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// Metadata carries attachment info for image/file messages. Stored as JSONB.
type Metadata struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Value implements driver.Valuer so sqlx can persist Metadata as JSONB.
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported metadata type %T", src)
}

// NullMetadata is Metadata that may be absent (text/system messages).
type NullMetadata struct {
	Metadata Metadata
	Valid    bool
}

func (n NullMetadata) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Metadata.Value()
}

func (n *NullMetadata) Scan(src interface{}) error {
	if src == nil {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return n.Metadata.Scan(src)
}

func (n NullMetadata) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Metadata)
}

func (n *NullMetadata) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	n.Valid = true
	return json.Unmarshal(data, &n.Metadata)
}

// Message is one durable entry of a room's append-only log. Append order
// equals id order equals the order exposed to readers.
type Message struct {
	ID        int64        `db:"id" json:"id"`
	RoomCode  string       `db:"room_code" json:"room_code"`
	Type      MessageType  `db:"type" json:"type"`
	Content   string       `db:"content" json:"content"`
	Metadata  NullMetadata `db:"metadata" json:"metadata,omitempty"`
	SenderID  string       `db:"sender_id" json:"sender_id"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}
