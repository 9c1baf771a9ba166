package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrPushNotConfigured = errors.New("push relay not configured")

// PushMessage is one notification to relay to a device.
type PushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushClient relays notifications to the FCM HTTP endpoint. High priority on
// Android and apns-priority 10 so chat pushes wake the app, same as the
// mobile clients expect.
type PushClient struct {
	http      *resty.Client
	serverKey string
}

func NewPushClient(endpoint, serverKey string) *PushClient {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &PushClient{http: client, serverKey: serverKey}
}

func (p *PushClient) Send(ctx context.Context, msg PushMessage) error {
	if p.serverKey == "" {
		return ErrPushNotConfigured
	}
	if msg.Token == "" {
		return errors.New("push: device token is required")
	}
	if msg.Title == "" || msg.Body == "" {
		return errors.New("push: notification title and body are required")
	}

	payload := map[string]interface{}{
		"message": map[string]interface{}{
			"token": msg.Token,
			"notification": map[string]string{
				"title": msg.Title,
				"body":  msg.Body,
			},
			"android": map[string]interface{}{
				"priority": "high",
				"notification": map[string]string{
					"channel_id": "high_importance_channel",
				},
			},
			"apns": map[string]interface{}{
				"headers": map[string]string{
					"apns-priority": "10",
				},
				"payload": map[string]interface{}{
					"aps": map[string]interface{}{
						"sound": "default",
						"badge": 1,
					},
				},
			},
			"data": msg.Data,
		},
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(p.serverKey).
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("push: fcm returned %s: %s", resp.Status(), resp.String())
	}
	return nil
}
