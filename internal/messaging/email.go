package messaging

import (
	"context"
	"fmt"

	"crm-service/pkg/config"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers the EMAIL channel over SMTP
type EmailSender struct {
	dialer *gomail.Dialer
	host   string
	from   string
}

func NewEmailSender(cfg *config.SMTPConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		host:   cfg.Host,
		from:   cfg.From,
	}
}

func (s *EmailSender) Send(ctx context.Context, req Request) (string, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	// SMTP assigns no id of its own, so we set the Message-ID ourselves and
	// report it as the provider id.
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", req.To)
	m.SetHeader("Message-ID", messageID)
	if req.Subject != "" {
		m.SetHeader("Subject", req.Subject)
	}
	m.SetBody("text/plain", req.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}

	return messageID, nil
}
