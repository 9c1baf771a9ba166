package models

import (
	"time"
)

// Message content types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message delivery states. The relay only ever writes "sent"; the rest is
// updated by the read-receipt endpoints.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

type Message struct {
	MessageID      string `gorm:"primaryKey;type:varchar(36)" json:"message_id"`
	ConversationID string `gorm:"type:varchar(36);index;not null" json:"conversation_id"`
	SenderID       string `gorm:"type:varchar(36);index;not null" json:"sender_id"`

	Content     string `json:"content"`
	MessageType string `gorm:"type:varchar(10);default:'text'" json:"message_type"`
	FileURL     string `json:"file_url,omitempty"`

	Status string `gorm:"type:varchar(10);default:'sent'" json:"status"`
	ReadBy string `json:"read_by"` // comma separated user ids

	Timestamp time.Time `gorm:"index" json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}
