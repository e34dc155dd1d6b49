package response

import (
	"time"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/usecase"
)

type SlotResponse struct {
	ID              string                `json:"id"`
	Type            string                `json:"type,omitempty"`
	Status          string                `json:"status"`
	CurrentVehicle  *slot.CurrentVehicle  `json:"currentVehicle"`
	ConflictDetails *slot.ConflictDetails `json:"conflictDetails,omitempty"`
	Stats           slot.Stats            `json:"stats"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

func FromSlot(s *slot.Slot) *SlotResponse {
	return &SlotResponse{
		ID:              s.ID,
		Status:          string(s.Status),
		CurrentVehicle:  s.CurrentVehicle,
		ConflictDetails: s.ConflictDetails,
		Stats:           s.Stats,
		UpdatedAt:       s.UpdatedAt,
	}
}

func FromSlotView(v *usecase.SlotView) *SlotResponse {
	r := FromSlot(&v.Slot)
	r.Type = string(v.Type)
	return r
}

func FromSlotViews(vs []usecase.SlotView) []*SlotResponse {
	out := make([]*SlotResponse, len(vs))
	for i := range vs {
		out[i] = FromSlotView(&vs[i])
	}
	return out
}
