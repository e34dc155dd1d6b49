package response

import (
	"time"

	"garage-orchestrator/internal/domain/alert"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

type AlertResponse struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Severity    string         `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	SlotID      null.String    `json:"slotId"`
	PlateNumber null.String    `json:"plateNumber"`
	Details     map[string]any `json:"details,omitempty"`
	Status      string         `json:"status"`
	ResolvedBy  *uuid.UUID     `json:"resolvedBy,omitempty"`
	ResolvedAt  null.Time      `json:"resolvedAt"`
	Timestamp   time.Time      `json:"timestamp"`
}

func FromAlert(a *alert.Alert) *AlertResponse {
	return &AlertResponse{
		ID:          a.ID,
		Type:        string(a.Type),
		Severity:    string(a.Severity),
		Title:       a.Title,
		Description: a.Description,
		SlotID:      null.StringFromPtr(a.SlotID),
		PlateNumber: null.StringFromPtr(a.PlateNumber),
		Details:     a.Details,
		Status:      string(a.Status),
		ResolvedBy:  a.ResolvedBy,
		ResolvedAt:  null.TimeFromPtr(a.ResolvedAt),
		Timestamp:   a.Timestamp,
	}
}

func FromAlerts(as []alert.Alert) []*AlertResponse {
	out := make([]*AlertResponse, len(as))
	for i := range as {
		out[i] = FromAlert(&as[i])
	}
	return out
}
