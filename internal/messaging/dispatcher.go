package messaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Message channels
const (
	ChannelSMS      = "SMS"
	ChannelWhatsApp = "WHATSAPP"
	ChannelEmail    = "EMAIL"
)

// Request describes one outbound message
type Request struct {
	Channel string
	To      string
	Subject string
	Body    string
	From    string
}

// Result is the uniform outcome of a dispatch attempt. Provider failures are
// captured here, never propagated as errors to the caller.
type Result struct {
	Success    bool   `json:"success"`
	ProviderID string `json:"providerId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Sender delivers a message through one provider and returns its message id
type Sender interface {
	Send(ctx context.Context, req Request) (string, error)
}

// Dispatcher routes a message to the sender for its channel. Senders are
// constructed once at startup and injected; the dispatcher holds no other
// state.
type Dispatcher struct {
	senders map[string]Sender
	log     *zap.Logger
}

func NewDispatcher(sms, whatsapp, email Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		senders: map[string]Sender{
			ChannelSMS:      sms,
			ChannelWhatsApp: whatsapp,
			ChannelEmail:    email,
		},
		log: log,
	}
}

// Send dispatches through the channel's provider and converts any failure
// into the uniform result
func (d *Dispatcher) Send(ctx context.Context, req Request) Result {
	sender, ok := d.senders[req.Channel]
	if !ok || sender == nil {
		return Result{Success: false, Error: fmt.Sprintf("unsupported channel: %s", req.Channel)}
	}

	providerID, err := sender.Send(ctx, req)
	if err != nil {
		d.log.Warn("Message dispatch failed",
			zap.String("channel", req.Channel),
			zap.String("to", req.To),
			zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}

	d.log.Info("Message dispatched",
		zap.String("channel", req.Channel),
		zap.String("to", req.To),
		zap.String("provider_id", providerID))
	return Result{Success: true, ProviderID: providerID}
}
