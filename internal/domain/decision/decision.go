// Package decision holds the gate decision vocabulary published back to the
// entry and exit gates.
package decision

import "time"

type Decision string

const (
	AllowEntry Decision = "ALLOW_ENTRY"
	DenyEntry  Decision = "DENY_ENTRY"
	AllowExit  Decision = "ALLOW_EXIT"
	DenyExit   Decision = "DENY_EXIT"
)

func (d Decision) Allowed() bool {
	return d == AllowEntry || d == AllowExit
}

type Reason string

// ReasonMissingPlate answers a gate request that carried no plate, at either gate.
const ReasonMissingPlate Reason = "MISSING_PLATE_NUMBER"

// Entry reasons.
const (
	ReasonReservationHonored      Reason = "RESERVATION_HONORED"
	ReasonStackedRelocated        Reason = "STACKED_RESERVATION_RELOCATED"
	ReasonNoSafeAlternative       Reason = "NO_SAFE_ALTERNATIVE_SLOT"
	ReasonReservedSlotUnavailable Reason = "RESERVED_SLOT_UNAVAILABLE"
	ReasonNoReservationOrPermit   Reason = "NO_RESERVATION_OR_PERMIT"
	ReasonGarageFull              Reason = "GARAGE_IS_FULL"
	ReasonWalkInAccepted          Reason = "WALK_IN_PERMIT_ACCEPTED"
	ReasonVehicleBlacklisted      Reason = "VEHICLE_BLACKLISTED"
	ReasonInternalError           Reason = "INTERNAL_SERVER_ERROR"
)

// Exit reasons.
const (
	ReasonVehicleNotFound        Reason = "VEHICLE_NOT_FOUND"
	ReasonNoSessionFound         Reason = "NO_SESSION_FOUND"
	ReasonSessionStillProcessing Reason = "SESSION_STILL_PROCESSING"
	ReasonTransactionMissing     Reason = "PAYMENT_TRANSACTION_MISSING"
	ReasonPaymentCompleted       Reason = "PAYMENT_COMPLETED"
	ReasonPaymentFailed          Reason = "PAYMENT_FAILED_BLACKLISTED"
	ReasonCashPending            Reason = "CASH_PAYMENT_PENDING"
	ReasonCardProcessing         Reason = "PAYMENT_PROCESSING_CARD"
	ReasonSessionCancelled       Reason = "SESSION_CANCELLED"
	ReasonUnknownPaymentStatus   Reason = "UNKNOWN_PAYMENT_STATUS"
)

// Outcome is what an engine decided, before it is addressed to a gate.
type Outcome struct {
	Decision Decision
	Reason   Reason
	Message  string
	SlotName *string
}

func Deny(d Decision, reason Reason, message string) Outcome {
	return Outcome{Decision: d, Reason: reason, Message: message}
}

func Allow(d Decision, reason Reason, message string, slotName *string) Outcome {
	return Outcome{Decision: d, Reason: reason, Message: message, SlotName: slotName}
}

// GateResponse is the message published on the gate response topic.
type GateResponse struct {
	RequestID   string    `json:"requestId"`
	Decision    Decision  `json:"decision"`
	Reason      Reason    `json:"reason"`
	Message     string    `json:"message"`
	SlotName    *string   `json:"slotName"`
	Timestamp   time.Time `json:"timestamp"`
	Gate        string    `json:"gate,omitempty"`
	PlateNumber string    `json:"plateNumber,omitempty"`
}

func (o Outcome) Response(requestID string, at time.Time) GateResponse {
	return GateResponse{
		RequestID: requestID,
		Decision:  o.Decision,
		Reason:    o.Reason,
		Message:   o.Message,
		SlotName:  o.SlotName,
		Timestamp: at,
	}
}
