package permit

import (
	"errors"
	"time"

	"garage-orchestrator/internal/domain/payment"

	"github.com/google/uuid"
)

var ErrPaymentIntentMissing = errors.New("card permit carries no payment intent")

const KeyPrefix = "entry-permit:"

// EntryPermit is the short-lived walk-in intent written at registration and
// consumed by the entry gate.
type EntryPermit struct {
	UserID           uuid.UUID      `json:"userId"`
	VehicleID        uuid.UUID      `json:"vehicleId"`
	PaymentIntentID  *string        `json:"paymentIntentId"`
	PaymentType      payment.Method `json:"paymentTypeDecision"`
	ExpectedExitTime time.Time      `json:"expectedExitTime"`
}

func Key(plate string) string {
	return KeyPrefix + plate
}

func (p EntryPermit) Validate() error {
	if p.PaymentType == payment.MethodCard && (p.PaymentIntentID == nil || *p.PaymentIntentID == "") {
		return ErrPaymentIntentMissing
	}
	return nil
}
