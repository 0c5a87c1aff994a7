package notify

import (
	"context"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// DefaultFrom is the sender used until the restaurant verifies its own domain.
const DefaultFrom = "Bokaap Deli <onboarding@resend.dev>"

type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender hands an email to a delivery provider.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	params := &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}
	slog.Info("reservation email sent", "to", email.To, "subject", email.Subject, "id", sent.Id)
	return nil
}

// LogSender only logs emails. It is used when no provider key is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, email Email) error {
	slog.Info("email delivery disabled, logging message instead",
		"to", email.To, "subject", email.Subject, "bytes", len(email.HTML))
	return nil
}
