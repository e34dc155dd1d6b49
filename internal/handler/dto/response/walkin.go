package response

import (
	"time"

	"garage-orchestrator/internal/usecase"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

type WalkInResponse struct {
	Message          string      `json:"message"`
	UserID           uuid.UUID   `json:"userId"`
	VehicleID        uuid.UUID   `json:"vehicleId"`
	PlateNumber      string      `json:"plateNumber"`
	PaymentType      string      `json:"paymentType"`
	PaymentIntentID  null.String `json:"paymentIntentId"`
	ExpectedExitTime time.Time   `json:"expectedExitTime"`
	PermitExpiresAt  time.Time   `json:"permitExpiresAt"`
}

func FromWalkIn(r *usecase.WalkInResult) *WalkInResponse {
	return &WalkInResponse{
		Message:          "Walk-in registered. Proceed to the entry gate.",
		UserID:           r.UserID,
		VehicleID:        r.VehicleID,
		PlateNumber:      r.PlateNumber,
		PaymentType:      string(r.PaymentType),
		PaymentIntentID:  null.StringFromPtr(r.PaymentIntentID),
		ExpectedExitTime: r.ExpectedExitTime,
		PermitExpiresAt:  r.PermitExpiresAt,
	}
}
