package notify

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type Twilio struct {
	client *twilio.RestClient
	from   string
}

func NewTwilio(cfg config.NotifyConfig) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioSID,
		Password: cfg.TwilioToken,
	})
	return &Twilio{client: client, from: cfg.TwilioFromPhone}
}

func (t *Twilio) Send(ctx context.Context, phone, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return errs.Wrap(err, "send sms")
	}
	return nil
}

// LogSMS stands in for Twilio when no account is configured.
type LogSMS struct {
	logger *slog.Logger
}

func NewLogSMS(logger *slog.Logger) *LogSMS {
	return &LogSMS{logger: logger}
}

func (l *LogSMS) Send(ctx context.Context, phone, body string) error {
	l.logger.InfoContext(ctx, "sms not sent: twilio is not configured",
		slog.String("phone", phone), slog.Int("length", len(body)))
	return nil
}

// NewSMSSender picks Twilio when credentials are present.
func NewSMSSender(cfg config.NotifyConfig, logger *slog.Logger) usecase.SMSSender {
	if cfg.TwilioSID == "" || cfg.TwilioToken == "" {
		return NewLogSMS(logger)
	}
	return NewTwilio(cfg)
}
