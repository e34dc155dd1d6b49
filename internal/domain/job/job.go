// Package job defines the closed set of queues and job kinds the orchestrator
// schedules, together with their payloads.
package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownKind    = errors.New("unknown job kind")
	ErrInvalidPayload = errors.New("invalid job payload")
)

type ID = uuid.UUID

type Queue string

const (
	QueueGate      Queue = "gate-queue"
	QueueSlotEvent Queue = "slot-event-queue"
	QueueLifecycle Queue = "session-lifecycle-queue"
	QueuePayment   Queue = "payment-queue"
	QueueSystem    Queue = "system-queue"
)

func Queues() []Queue {
	return []Queue{QueueGate, QueueSlotEvent, QueueLifecycle, QueuePayment, QueueSystem}
}

type Kind string

const (
	KindEntryRequest          Kind = "gate-event-entry-request"
	KindExitRequest           Kind = "gate-event-exit-request"
	KindSlotEvent             Kind = "slot-event"
	KindCheckOccupancy        Kind = "check-actual-occupancy"
	KindCheckSessionExpiry    Kind = "check-session-expiry"
	KindCheckGracePeriodEnded Kind = "check-grace-period-expiry"
	KindProcessPayment        Kind = "process-payment"
	KindDeviceStatus          Kind = "raspberry-status"
)

// Queue returns the queue a kind is routed to.
func (k Kind) Queue() (Queue, error) {
	switch k {
	case KindEntryRequest, KindExitRequest:
		return QueueGate, nil
	case KindSlotEvent:
		return QueueSlotEvent, nil
	case KindCheckOccupancy, KindCheckSessionExpiry, KindCheckGracePeriodEnded:
		return QueueLifecycle, nil
	case KindProcessPayment:
		return QueuePayment, nil
	case KindDeviceStatus:
		return QueueSystem, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// Default priorities; lower runs first.
const (
	PrioritySlotEvent = 1
	PriorityDefault   = 5
	PriorityPayment   = 7
)

type Options struct {
	Delay    time.Duration
	Priority int
}

type State string

const (
	StatePending State = "pending"
	StateDead    State = "dead"
)

type Job struct {
	ID        ID
	Queue     Queue
	Kind      Kind
	Payload   json.RawMessage
	Priority  int
	RunAt     time.Time
	Attempts  int
	State     State
	LastError *string
	CreatedAt time.Time
}

func Encode(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return b, nil
}

func Decode[T any](j Job) (T, error) {
	var v T
	if err := json.Unmarshal(j.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, j.Kind, err)
	}
	return v, nil
}

type EntryRequest struct {
	PlateNumber string `json:"plateNumber"`
	RequestID   string `json:"requestId"`
}

type ExitRequest struct {
	PlateNumber string `json:"plateNumber"`
	RequestID   string `json:"requestId"`
	Gate        string `json:"gate"`
}

type SlotEventType string

const (
	SlotEventOccupied  SlotEventType = "OCCUPIED"
	SlotEventAvailable SlotEventType = "AVAILABLE"
)

type SlotEvent struct {
	SlotID      string        `json:"slot_id"`
	PlateNumber *string       `json:"plate_number"`
	EventType   SlotEventType `json:"event_type"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Lifecycle is the payload of the three session lifecycle kinds. Jobs are
// scheduled before the session row exists, so SessionID is filled in later and
// VehicleID or ReservationID let a handler resolve the session if it is missing.
// SlotID is informational; handlers always re-read the session's slot.
type Lifecycle struct {
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
	VehicleID     *uuid.UUID `json:"vehicle_id,omitempty"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	SlotID        string     `json:"slot_id,omitempty"`
}

type Payment struct {
	SessionID   uuid.UUID `json:"session_id"`
	Amount      int64     `json:"amount"`
	UserID      uuid.UUID `json:"user_id"`
	PlateNumber string    `json:"plate_number"`
}

type DeviceStatus struct {
	DeviceID string    `json:"deviceId"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"lastSeen"`
	CPUTemp  *float64  `json:"cpuTemp"`
}
