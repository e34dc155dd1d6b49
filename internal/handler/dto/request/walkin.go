package request

import (
	"garage-orchestrator/internal/usecase"

	"github.com/jinzhu/copier"
)

type WalkInRegisterRequest struct {
	Name                    string `json:"name" binding:"max=100"`
	Phone                   string `json:"phone" binding:"required,min=8,max=20"`
	Email                   string `json:"email" binding:"omitempty,email"`
	PlateNumber             string `json:"plateNumber" binding:"required,min=3,max=10"`
	ExpectedDurationMinutes int    `json:"expectedDurationMinutes" binding:"required,min=1,max=1440"`
	PaymentType             string `json:"paymentType" binding:"required,oneof=CARD CASH"`
	PaymentMethodID         string `json:"paymentMethodId"`
}

func (r *WalkInRegisterRequest) ToUseCase() (usecase.WalkInRequest, error) {
	var out usecase.WalkInRequest
	if err := copier.Copy(&out, r); err != nil {
		return usecase.WalkInRequest{}, err
	}
	return out, nil
}
