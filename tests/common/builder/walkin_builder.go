//go:build unit || e2e

package builder

import (
	reqdto "garage-orchestrator/internal/handler/dto/request"
)

type WalkInBuilder struct {
	Name            string
	Phone           string
	Email           string
	PlateNumber     string
	DurationMinutes int
	PaymentType     string
	PaymentMethodID string
}

func NewWalkInBuilder() *WalkInBuilder {
	return &WalkInBuilder{
		Name:            "Walk In",
		Phone:           "+201001234567",
		Email:           "walkin@example.com",
		PlateNumber:     "ABC123",
		DurationMinutes: 120,
		PaymentType:     "CARD",
		PaymentMethodID: "pm_card_visa",
	}
}

func (w *WalkInBuilder) Cash() *WalkInBuilder {
	w.PaymentType = "CASH"
	w.PaymentMethodID = ""
	return w
}

func (w *WalkInBuilder) BuildDTO() reqdto.WalkInRegisterRequest {
	return reqdto.WalkInRegisterRequest{
		Name:                    w.Name,
		Phone:                   w.Phone,
		Email:                   w.Email,
		PlateNumber:             w.PlateNumber,
		ExpectedDurationMinutes: w.DurationMinutes,
		PaymentType:             w.PaymentType,
		PaymentMethodID:         w.PaymentMethodID,
	}
}
