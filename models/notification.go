package models

import "time"

// Notification is the durable record of a push sent (or attempted) to a user.
type Notification struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RecipientID string `gorm:"type:varchar(36);index;not null" json:"recipient_id"`
	SenderID    string `gorm:"type:varchar(36)" json:"sender_id"`

	Title string `json:"title"`
	Body  string `json:"body"`
	Type  string `gorm:"type:varchar(20);default:'general'" json:"type"`

	AppointmentID string `gorm:"type:varchar(36)" json:"appointment_id,omitempty"`

	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
