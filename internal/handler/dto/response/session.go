package response

import (
	"time"

	"garage-orchestrator/internal/domain/session"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

type SessionResponse struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             uuid.UUID   `json:"userId"`
	VehicleID          uuid.UUID   `json:"vehicleId"`
	SlotID             string      `json:"slotId"`
	Status             string      `json:"status"`
	EntryTime          time.Time   `json:"entryTime"`
	ExpectedExitTime   time.Time   `json:"expectedExitTime"`
	ExitTime           null.Time   `json:"exitTime"`
	OvertimeStart      null.Time   `json:"overtimeStart"`
	OvertimeEnd        null.Time   `json:"overtimeEnd"`
	IsExtended         bool        `json:"isExtended"`
	InvolvedInConflict bool        `json:"involvedInConflict"`
	PaymentMethod      string      `json:"paymentMethod"`
	PaymentIntentID    null.String `json:"paymentIntentId"`
}

func FromSession(s *session.Session) *SessionResponse {
	return &SessionResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		VehicleID:          s.VehicleID,
		SlotID:             s.SlotID,
		Status:             string(s.Status),
		EntryTime:          s.EntryTime,
		ExpectedExitTime:   s.ExpectedExitTime,
		ExitTime:           null.TimeFromPtr(s.ExitTime),
		OvertimeStart:      null.TimeFromPtr(s.OvertimeStart),
		OvertimeEnd:        null.TimeFromPtr(s.OvertimeEnd),
		IsExtended:         s.IsExtended,
		InvolvedInConflict: s.InvolvedInConflict,
		PaymentMethod:      string(s.PaymentMethod),
		PaymentIntentID:    null.StringFromPtr(s.PaymentIntentID),
	}
}

func FromSessions(ss []session.Session) []*SessionResponse {
	out := make([]*SessionResponse, len(ss))
	for i := range ss {
		out[i] = FromSession(&ss[i])
	}
	return out
}

type ExtendSessionResponse struct {
	Message string           `json:"message"`
	Session *SessionResponse `json:"session"`
}
