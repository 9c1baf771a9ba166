package models

import (
	"sort"
	"time"
)

// Conversation is a durable two-party thread between a patient and a doctor.
// PairKey is the sorted participant ids joined with "_", so the unordered pair
// (A,B) and (B,A) always resolve to the same row.
type Conversation struct {
	ConversationID string `gorm:"primaryKey;type:varchar(36)" json:"conversation_id"`
	PairKey        string `gorm:"type:varchar(73);uniqueIndex;not null" json:"-"`

	PatientID   string `gorm:"type:varchar(36);index" json:"patient_id"`
	DoctorID    string `gorm:"type:varchar(36);index" json:"doctor_id"`
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`

	// Denormalized last-message summary, overwritten on every append.
	LastMessage         string     `json:"last_message"`
	LastMessageType     string     `gorm:"type:varchar(10);default:'text'" json:"last_message_type"`
	LastMessageTime     *time.Time `json:"last_message_time"`
	LastMessageSenderID string     `gorm:"type:varchar(36)" json:"last_message_sender_id"`
	LastMessageReadBy   string     `json:"last_message_read_by"` // comma separated user ids

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PairKeyFor canonicalizes the unordered participant pair.
func PairKeyFor(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return ids[0] + "_" + ids[1]
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.PatientID == userID || c.DoctorID == userID
}
