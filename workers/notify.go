// Package workers queues and executes the work that must not ride the
// request path: push notifications for recipients who were offline when a
// message was relayed.
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medical-app/logger"
	"medical-app/models"
	"medical-app/services"
)

// TypeOfflinePush is the asynq task type for offline message pushes.
const TypeOfflinePush = "notification:offline_push"

type offlinePushPayload struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Message     string `json:"message"`
}

// Notifier enqueues offline pushes on Redis when available and degrades to
// synchronous delivery in single-process deployments without Redis.
type Notifier struct {
	client *asynq.Client // nil means direct delivery
	db     *gorm.DB
	push   *services.PushClient
}

func NewNotifier(redisURL string, db *gorm.DB, push *services.PushClient) (*Notifier, error) {
	n := &Notifier{db: db, push: push}
	if redisURL == "" {
		return n, nil
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	n.client = asynq.NewClient(opt)
	return n, nil
}

// Close releases the queue connection if one was opened.
func (n *Notifier) Close() error {
	if n.client == nil {
		return nil
	}
	return n.client.Close()
}

// NotifyOffline records and pushes a notification for a message the relay
// could not deliver live. Failures are logged, never propagated: the
// message itself is already durable in the conversation store.
func (n *Notifier) NotifyOffline(ctx context.Context, senderID, recipientID, message string) {
	payload := offlinePushPayload{SenderID: senderID, RecipientID: recipientID, Message: message}

	if n.client == nil {
		if err := n.deliver(ctx, payload); err != nil {
			logger.Log.Warn("offline push failed", zap.Error(err))
		}
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Error("marshal offline push", zap.Error(err))
		return
	}
	_, err = n.client.EnqueueContext(ctx, asynq.NewTask(TypeOfflinePush, raw),
		asynq.Queue("notifications"), asynq.MaxRetry(5))
	if err != nil {
		logger.Log.Warn("enqueue offline push failed, delivering inline", zap.Error(err))
		if err := n.deliver(ctx, payload); err != nil {
			logger.Log.Warn("offline push failed", zap.Error(err))
		}
	}
}

// deliver stores the notification row and relays it to the recipient's
// device, if they registered one.
func (n *Notifier) deliver(ctx context.Context, p offlinePushPayload) error {
	var sender, recipient models.User
	if err := n.db.WithContext(ctx).First(&sender, "id = ?", p.SenderID).Error; err != nil {
		return fmt.Errorf("load sender: %w", err)
	}
	if err := n.db.WithContext(ctx).First(&recipient, "id = ?", p.RecipientID).Error; err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}

	title := "New message from " + sender.FullName()
	record := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient.ID,
		SenderID:    sender.ID,
		Title:       title,
		Body:        p.Message,
		Type:        "message",
	}
	if err := n.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if recipient.FCMToken == "" {
		logger.Log.Debug("recipient has no device token",
			zap.String("recipient_id", recipient.ID))
		return nil
	}

	err := n.push.Send(ctx, services.PushMessage{
		Token: recipient.FCMToken,
		Title: title,
		Body:  p.Message,
		Data: map[string]string{
			"senderId":    sender.ID,
			"recipientId": recipient.ID,
			"type":        "message",
		},
	})
	if err != nil && !errors.Is(err, services.ErrPushNotConfigured) {
		return err
	}
	return nil
}

// RunWorker consumes the notifications queue until ctx is cancelled. It is
// only started when Redis is configured.
func RunWorker(ctx context.Context, redisURL string, notifier *Notifier) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"notifications": 1, "default": 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Log.Warn("notification task failed",
				zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeOfflinePush, func(ctx context.Context, t *asynq.Task) error {
		var p offlinePushPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return notifier.deliver(ctx, p)
	})

	if err := srv.Start(mux); err != nil {
		return err
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}
