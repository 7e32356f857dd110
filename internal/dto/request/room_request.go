package request

// EnsureRoomRequest represents a room ensure request. Code is optional:
// when absent the server generates an unguessable one.
type EnsureRoomRequest struct {
	Code string `json:"code,omitempty" binding:"omitempty,len=16,alphanum"`
}

// SendMessageRequest represents a message append request
type SendMessageRequest struct {
	Type     string           `json:"type,omitempty" binding:"omitempty,oneof=text image file"` // default: text
	Content  string           `json:"content" binding:"required"`
	SenderID string           `json:"sender_id" binding:"required,uuid"`
	Metadata *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata carries attachment info for image and file messages
type MessageMetadata struct {
	Name string `json:"name" binding:"required,max=255"`
	Size int64  `json:"size" binding:"required,min=1"`
}
