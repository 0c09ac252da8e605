package notify

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
)

// Message is one outbound HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
}

// NewResendMailer returns nil when apiKey is empty so callers can treat a
// missing key as "mail disabled".
func NewResendMailer(apiKey string) *ResendMailer {
	if apiKey == "" {
		return nil
	}
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

// Send implements Mailer.
func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	if m == nil || m.client == nil {
		return "", ErrNotConfigured
	}
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", err
	}
	if sent == nil || sent.Id == "" {
		return "", errors.New("resend: empty message id")
	}
	return sent.Id, nil
}
