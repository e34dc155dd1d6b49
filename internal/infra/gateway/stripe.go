// Package gateway adapts the card processor to the PaymentGateway port.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type Stripe struct {
	api    *client.API
	cfg    config.PaymentConfig
	logger *slog.Logger
}

func NewStripe(cfg config.PaymentConfig, logger *slog.Logger) *Stripe {
	return &Stripe{api: client.New(cfg.SecretKey, nil), cfg: cfg, logger: logger}
}

func (s *Stripe) CreateCustomer(ctx context.Context, p usecase.CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Name:          stripe.String(p.Name),
		Phone:         stripe.String(p.Phone),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(p.PaymentMethodID),
		},
	}
	if p.Email != "" {
		params.Email = stripe.String(p.Email)
	}
	params.Context = ctx

	c, err := s.api.Customers.New(params)
	if err != nil {
		return "", s.fail("failed to create customer", err)
	}
	return c.ID, nil
}

// AuthorizeHold confirms a manual-capture intent off session.
func (s *Stripe) AuthorizeHold(ctx context.Context, p usecase.HoldParams) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.Amount),
		Currency:      stripe.String(s.cfg.Currency),
		Customer:      stripe.String(p.CustomerID),
		PaymentMethod: stripe.String(p.PaymentMethodID),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", s.fail("failed to authorize hold", err)
	}
	return pi.ID, nil
}

func (s *Stripe) Capture(ctx context.Context, intentID string, amount int64, idempotencyKey string) error {
	params := &stripe.PaymentIntentCaptureParams{AmountToCapture: stripe.Int64(amount)}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	if _, err := s.api.PaymentIntents.Capture(intentID, params); err != nil {
		return s.fail("failed to capture payment", err)
	}
	return nil
}

func (s *Stripe) IntentState(ctx context.Context, intentID string) (usecase.IntentState, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return "", s.fail("failed to read payment intent", err)
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return usecase.IntentCaptured, nil
	case stripe.PaymentIntentStatusCanceled:
		return usecase.IntentCancelled, nil
	default:
		return usecase.IntentHeld, nil
	}
}

func (s *Stripe) Cancel(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := s.api.PaymentIntents.Cancel(intentID, params); err != nil {
		return s.fail("failed to cancel payment hold", err)
	}
	return nil
}

// CreatePaymentLink opens a hosted checkout for an outstanding amount and
// returns its URL.
func (s *Stripe) CreatePaymentLink(ctx context.Context, description string, amount int64, metadata map[string]string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Currency),
				UnitAmount: stripe.Int64(amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", s.fail("failed to create payment link", err)
	}
	return cs.URL, nil
}

// ParseWebhook verifies the signature header and extracts the metadata of
// checkout session events.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*usecase.WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}
	out := &usecase.WebhookEvent{Type: string(ev.Type)}
	if ev.Type == stripe.EventTypeCheckoutSessionCompleted && ev.Data != nil {
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, err
		}
		out.Metadata = cs.Metadata
	}
	return out, nil
}

func (s *Stripe) fail(msg string, err error) error {
	return infra.WrapRepoErr(s.logger, infra.KindGatewayFailure, msg, err)
}
