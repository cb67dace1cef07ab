package services

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
)

// MailerService sends transactional email through Resend. It satisfies the
// Notifier interface used by the listing, inquiry and user services.
type MailerService struct {
	Client *resend.Client
	From   string
}

func NewMailerService(apiKey, from string) *MailerService {
	return &MailerService{
		Client: resend.NewClient(apiKey),
		From:   from,
	}
}

func (m *MailerService) Send(ctx context.Context, to, subject, body string) error {
	if m.Client == nil {
		return errors.New("mailer is not configured")
	}
	if to == "" {
		return errors.New("empty recipient")
	}

	params := &resend.SendEmailRequest{
		From:    m.From,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	_, err := m.Client.Emails.SendWithContext(ctx, params)
	return err
}
