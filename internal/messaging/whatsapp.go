package messaging

import (
	"context"
	"strings"

	"crm-service/pkg/config"
)

// WhatsAppSender delivers the WHATSAPP channel. The provider reuses the SMS
// API with a "whatsapp:" address prefix on both ends.
type WhatsAppSender struct {
	sms  *SMSSender
	from string
}

func NewWhatsAppSender(cfg *config.SMSConfig) *WhatsAppSender {
	return &WhatsAppSender{
		sms:  NewSMSSender(cfg),
		from: cfg.WhatsAppFrom,
	}
}

func (s *WhatsAppSender) Send(ctx context.Context, req Request) (string, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	req.To = withWhatsAppPrefix(req.To)
	req.From = withWhatsAppPrefix(from)
	return s.sms.Send(ctx, req)
}

func withWhatsAppPrefix(addr string) string {
	if strings.HasPrefix(addr, "whatsapp:") {
		return addr
	}
	return "whatsapp:" + addr
}
