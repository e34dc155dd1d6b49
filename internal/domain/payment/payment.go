package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrInvalidStatus = errors.New("invalid payment status")
	ErrIntentMissing = errors.New("card payment has no payment intent")
)

type Method string

const (
	MethodCard Method = "CARD"
	MethodCash Method = "CASH"
)

func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if m != MethodCard && m != MethodCash {
		return "", ErrInvalidMethod
	}
	return m, nil
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusUnpaidExit Status = "UNPAID_EXIT"
	StatusFailed     Status = "FAILED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusCompleted, StatusCancelled, StatusUnpaidExit, StatusFailed:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Transaction is the settlement record of a completed session.
type Transaction struct {
	ID              uuid.UUID  `json:"id"`
	SessionID       uuid.UUID  `json:"session_id"`
	Amount          int64      `json:"amount"`
	Method          Method     `json:"method"`
	Status          Status     `json:"status"`
	PaymentIntentID *string    `json:"payment_intent_id,omitempty"`
	CheckoutURL     *string    `json:"checkout_url,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewPending(sessionID uuid.UUID, amount int64, method Method, intentID *string) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		SessionID:       sessionID,
		Amount:          amount,
		Method:          method,
		Status:          StatusPending,
		PaymentIntentID: intentID,
	}
}

func (t *Transaction) MarkCompleted(at time.Time) {
	t.Status = StatusCompleted
	t.PaidAt = &at
}

func (t *Transaction) MarkUnpaidExit(checkoutURL string) {
	t.Status = StatusUnpaidExit
	if checkoutURL != "" {
		t.CheckoutURL = &checkoutURL
	}
}

func (t *Transaction) MarkFailed() {
	t.Status = StatusFailed
}

// NewCancelled records a voided settlement, such as a no-show, for audit.
func NewCancelled(sessionID uuid.UUID, method Method, intentID *string) *Transaction {
	t := NewPending(sessionID, 0, method, intentID)
	t.Status = StatusCancelled
	return t
}
