package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSender struct {
	providerID string
	err        error
	lastReq    Request
}

func (f *fakeSender) Send(ctx context.Context, req Request) (string, error) {
	f.lastReq = req
	return f.providerID, f.err
}

func TestDispatcherRoutesByChannel(t *testing.T) {
	sms := &fakeSender{providerID: "SM123"}
	whatsapp := &fakeSender{providerID: "WA456"}
	email := &fakeSender{providerID: "EM789"}
	d := NewDispatcher(sms, whatsapp, email, zap.NewNop())

	result := d.Send(context.Background(), Request{Channel: ChannelWhatsApp, To: "+447700900123", Body: "hi"})

	assert.True(t, result.Success)
	assert.Equal(t, "WA456", result.ProviderID)
	assert.Equal(t, "+447700900123", whatsapp.lastReq.To)
	assert.Empty(t, sms.lastReq.To)
}

func TestDispatcherConvertsProviderErrorToResult(t *testing.T) {
	sms := &fakeSender{err: errors.New("provider unavailable")}
	d := NewDispatcher(sms, &fakeSender{}, &fakeSender{}, zap.NewNop())

	result := d.Send(context.Background(), Request{Channel: ChannelSMS, To: "+447700900123", Body: "hi"})

	assert.False(t, result.Success)
	assert.Equal(t, "provider unavailable", result.Error)
	assert.Empty(t, result.ProviderID)
}

func TestDispatcherRejectsUnknownChannel(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, &fakeSender{}, &fakeSender{}, zap.NewNop())

	result := d.Send(context.Background(), Request{Channel: "CARRIER_PIGEON"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported channel")
}
