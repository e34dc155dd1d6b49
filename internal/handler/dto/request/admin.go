package request

import (
	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/usecase/shared"
)

type SlotListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=AVAILABLE ASSIGNED OCCUPIED CONFLICT MAINTENANCE DISABLED"`
}

func (q *SlotListQuery) StatusFilter() *slot.Status {
	if q.Status == "" {
		return nil
	}
	st := slot.Status(q.Status)
	return &st
}

type SetSlotStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=AVAILABLE MAINTENANCE DISABLED"`
}

type AlertListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING ACKNOWLEDGED RESOLVED DISMISSED"`
	Severity string `form:"severity" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	SlotID   string `form:"slot_id"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

func (q *AlertListQuery) ToFilter() shared.AlertFilter {
	f := shared.AlertFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st := alert.Status(q.Status)
		f.Status = &st
	}
	if q.Severity != "" {
		sev := alert.Severity(q.Severity)
		f.Severity = &sev
	}
	if q.SlotID != "" {
		f.SlotID = &q.SlotID
	}
	return f
}

type TransitionAlertRequest struct {
	Status string `json:"status" binding:"required,oneof=ACKNOWLEDGED RESOLVED DISMISSED"`
}
