package request

import (
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/usecase/shared"
)

type ExtendSessionRequest struct {
	ExtendForMinutes int `json:"extendForMinutes" binding:"required,min=1"`
}

type SessionListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE COMPLETED CANCELLED"`
	SlotID string `form:"slot_id"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

func (q *SessionListQuery) ToFilter() shared.SessionFilter {
	f := shared.SessionFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st := session.Status(q.Status)
		f.Status = &st
	}
	if q.SlotID != "" {
		f.SlotID = &q.SlotID
	}
	return f
}
