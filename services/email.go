package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"medical-app/logger"
)

// Mailer sends transactional mail through an HTTP mail API. When no API url
// is configured (local development) sends are logged and dropped.
type Mailer struct {
	http *resty.Client
	from string
	// empty means disabled
	apiURL string
}

func NewMailer(apiURL, apiKey, from string) *Mailer {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Mailer{http: client, from: from, apiURL: apiURL}
}

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendEmail delivers a plain-text mail to a single recipient.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, message string) error {
	if m.apiURL == "" {
		logger.Log.Info("mailer disabled, dropping email",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(mailRequest{From: m.from, To: to, Subject: subject, Text: message}).
		Post(m.apiURL)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send email: mail api returned %s", resp.Status())
	}
	return nil
}

// SendVerificationEmail mails a fresh account-activation code.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, code string, ttl time.Duration) error {
	message := fmt.Sprintf(
		"Hello,\n\nThank you for creating an account on our platform.\n"+
			"Your activation code is: %s\n"+
			"This code is valid for %d minutes.",
		code, int(ttl.Minutes()))
	return m.SendEmail(ctx, to, "Account activation", message)
}
