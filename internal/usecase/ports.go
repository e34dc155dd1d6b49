package usecase

import (
	"context"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/permit"
	"garage-orchestrator/internal/domain/slot"
)

// SlotStore is the live occupancy view of the garage. Writes are atomic per
// slot only; there is no transaction spanning the store and the ledger.
type SlotStore interface {
	Get(ctx context.Context, id string) (*slot.Slot, error)
	// List returns every slot ordered by id.
	List(ctx context.Context) ([]slot.Slot, error)
	ListByStatus(ctx context.Context, status slot.Status) ([]slot.Slot, error)
	// Update applies mutate only while the live status is one of expect (any
	// status when expect is empty). applied is false when the guard failed.
	Update(ctx context.Context, id string, expect []slot.Status, mutate func(*slot.Slot)) (applied bool, err error)
	Put(ctx context.Context, s *slot.Slot) error
}

// Scheduler is the durable delayed-job queue. Cancel and UpdatePayload are
// no-ops for jobs that already ran or never existed.
type Scheduler interface {
	Schedule(ctx context.Context, queue job.Queue, kind job.Kind, payload any, opts job.Options) (job.ID, error)
	Cancel(ctx context.Context, id job.ID) error
	UpdatePayload(ctx context.Context, id job.ID, payload any) error
}

// PermitStore holds walk-in entry permits. Get returns nil, nil when absent.
type PermitStore interface {
	Get(ctx context.Context, plate string) (*permit.EntryPermit, error)
	Put(ctx context.Context, plate string, p permit.EntryPermit, ttl time.Duration) error
	Delete(ctx context.Context, plate string) error
}

type DecisionPublisher interface {
	PublishDecision(ctx context.Context, resp decision.GateResponse) error
}

type CustomerParams struct {
	Name            string
	Email           string
	Phone           string
	PaymentMethodID string
}

type HoldParams struct {
	CustomerID      string
	PaymentMethodID string
	Amount          int64
	Metadata        map[string]string
}

const WebhookCheckoutCompleted = "checkout.session.completed"

type WebhookEvent struct {
	Type     string
	Metadata map[string]string
}

// IntentState is the processor's view of a card hold.
type IntentState string

const (
	IntentHeld      IntentState = "held"
	IntentCaptured  IntentState = "captured"
	IntentCancelled IntentState = "cancelled"
)

// PaymentGateway is the card processor. Amounts are in minor units.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, params CustomerParams) (string, error)
	AuthorizeHold(ctx context.Context, params HoldParams) (string, error)
	// Capture charges a hold once per idempotency key; a repeated call with
	// the same key does not charge again.
	Capture(ctx context.Context, intentID string, amount int64, idempotencyKey string) error
	IntentState(ctx context.Context, intentID string) (IntentState, error)
	Cancel(ctx context.Context, intentID string) error
	CreatePaymentLink(ctx context.Context, description string, amount int64, metadata map[string]string) (string, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type PushSender interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

type SMSSender interface {
	Send(ctx context.Context, phone, body string) error
}

// Broadcaster fans events out to live dashboard clients.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

type Metrics interface {
	GateDecision(ctx context.Context, d decision.Decision, reason decision.Reason)
	JobProcessed(ctx context.Context, queue job.Queue, kind job.Kind, outcome string)
	AlertRaised(ctx context.Context, typ alert.Type, severity alert.Severity)
}

type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(string, any) {}

type NopMetrics struct{}

func (NopMetrics) GateDecision(context.Context, decision.Decision, decision.Reason) {}
func (NopMetrics) JobProcessed(context.Context, job.Queue, job.Kind, string) {}
func (NopMetrics) AlertRaised(context.Context, alert.Type, alert.Severity) {}
