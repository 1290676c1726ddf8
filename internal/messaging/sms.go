package messaging

import (
	"context"
	"fmt"
	"time"

	"crm-service/pkg/config"

	"github.com/go-resty/resty/v2"
)

type smsResponse struct {
	SID     string `json:"sid"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SMSSender delivers the SMS channel through the provider's REST API
type SMSSender struct {
	client     *resty.Client
	accountSID string
	from       string
}

func NewSMSSender(cfg *config.SMSConfig) *SMSSender {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &SMSSender{
		client:     client,
		accountSID: cfg.AccountSID,
		from:       cfg.From,
	}
}

func (s *SMSSender) Send(ctx context.Context, req Request) (string, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	var body smsResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   req.To,
			"From": from,
			"Body": req.Body,
		}).
		SetResult(&body).
		SetError(&body).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", s.accountSID))
	if err != nil {
		return "", fmt.Errorf("sms provider request failed: %w", err)
	}

	if resp.IsError() {
		if body.Message != "" {
			return "", fmt.Errorf("sms provider error %d: %s", resp.StatusCode(), body.Message)
		}
		return "", fmt.Errorf("sms provider error %d", resp.StatusCode())
	}

	return body.SID, nil
}
