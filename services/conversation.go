package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"medical-app/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not part of this conversation")
)

// ConversationStore is the durable side of the messaging system. It owns the
// find-or-create of conversation threads and the append-only message log,
// and backs the relay dispatcher's MessageStore.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// AppendMessage locates or creates the conversation for the unordered pair
// (senderID, recipientID), inserts the message with status "sent" and
// refreshes the conversation's last-message summary.
func (s *ConversationStore) AppendMessage(ctx context.Context, senderID, recipientID, content string) (string, error) {
	conv, err := s.getOrCreate(ctx, senderID, recipientID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	msg := models.Message{
		MessageID:      uuid.NewString(),
		ConversationID: conv.ConversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    models.MessageTypeText,
		Status:         models.MessageStatusSent,
		ReadBy:         senderID,
		Timestamp:      now,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	updates := map[string]interface{}{
		"last_message":           content,
		"last_message_type":      models.MessageTypeText,
		"last_message_time":      now,
		"last_message_sender_id": senderID,
		"last_message_read_by":   senderID,
	}
	if err := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("conversation_id = ?", conv.ConversationID).
		Updates(updates).Error; err != nil {
		return "", fmt.Errorf("update conversation summary: %w", err)
	}

	return msg.MessageID, nil
}

// getOrCreate resolves the thread by its canonical pair key so (A,B) and
// (B,A) can never produce two rows.
func (s *ConversationStore) getOrCreate(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	pairKey := models.PairKeyFor(userA, userB)

	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}

	var a, b models.User
	if err := s.db.WithContext(ctx).First(&a, "id = ?", userA).Error; err != nil {
		return nil, fmt.Errorf("sender %s: %w", userA, err)
	}
	if err := s.db.WithContext(ctx).First(&b, "id = ?", userB).Error; err != nil {
		return nil, fmt.Errorf("recipient %s: %w", userB, err)
	}

	conv = models.Conversation{
		ConversationID: uuid.NewString(),
		PairKey:        pairKey,
		IsActive:       true,
	}
	// Patient/doctor columns are role based, not direction based.
	if a.Role == models.RoleDoctor {
		conv.DoctorID, conv.DoctorName = a.ID, a.FullName()
		conv.PatientID, conv.PatientName = b.ID, b.FullName()
	} else {
		conv.PatientID, conv.PatientName = a.ID, a.FullName()
		conv.DoctorID, conv.DoctorName = b.ID, b.FullName()
	}

	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		// A concurrent append for the same pair may have won the race on
		// the unique pair key; re-read in that case.
		var again models.Conversation
		if lookupErr := s.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&again).Error; lookupErr == nil {
			return &again, nil
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conv, nil
}

// ListForUser returns every active conversation the user takes part in,
// most recently active first.
func (s *ConversationStore) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.WithContext(ctx).
		Where("(patient_id = ? OR doctor_id = ?) AND is_active = ?", userID, userID, true).
		Order("last_message_time DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Messages returns the full message log of a conversation, oldest first.
// The caller must be one of the two participants.
func (s *ConversationStore) Messages(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	conv, err := s.byID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	var msgs []models.Message
	err = s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// MarkRead flags every message the other party sent as read by userID and
// stamps the last-message summary.
func (s *ConversationStore) MarkRead(ctx context.Context, conversationID, userID string) error {
	conv, err := s.byID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}

	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND status <> ?",
			conversationID, userID, models.MessageStatusRead).
		Updates(map[string]interface{}{
			"status":  models.MessageStatusRead,
			"read_by": gorm.Expr("CASE WHEN read_by = '' THEN ? ELSE CONCAT(read_by, ',', ?) END", userID, userID),
		}).Error
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}

	if conv.LastMessageSenderID != userID && !readBySetContains(conv.LastMessageReadBy, userID) {
		readBy := conv.LastMessageReadBy
		if readBy == "" {
			readBy = userID
		} else {
			readBy += "," + userID
		}
		if err := s.db.WithContext(ctx).Model(&models.Conversation{}).
			Where("conversation_id = ?", conversationID).
			Update("last_message_read_by", readBy).Error; err != nil {
			return fmt.Errorf("update conversation read state: %w", err)
		}
	}
	return nil
}

func (s *ConversationStore) byID(ctx context.Context, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup conversation: %w", err)
	}
	return &conv, nil
}

func readBySetContains(readBy, userID string) bool {
	for _, id := range strings.Split(readBy, ",") {
		if id == userID {
			return true
		}
	}
	return false
}
