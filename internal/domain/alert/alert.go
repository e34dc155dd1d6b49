package alert

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidTransition = errors.New("invalid alert status transition")

type Type string

const (
	TypeViolation          Type = "VIOLATION"
	TypeOvertime           Type = "OVERTIME"
	TypeMaintenanceNeeded  Type = "MAINTENANCE_NEEDED"
	TypeCameraOffline      Type = "CAMERA_OFFLINE"
	TypeSuspiciousActivity Type = "SUSPICIOUS_ACTIVITY"
	TypeSlotConflict       Type = "SLOT_CONFLICT"
	TypeNoShow             Type = "NO_SHOW"
	TypePaymentHelpRequest Type = "PAYMENT_HELP_REQUEST"
	TypeSystemFailure      Type = "SYSTEM_FAILURE"
	TypeDataIntegrity      Type = "DATA_INTEGRITY"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

type Status string

const (
	StatusPending      Status = "PENDING"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusResolved     Status = "RESOLVED"
	StatusDismissed    Status = "DISMISSED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusAcknowledged, StatusResolved, StatusDismissed:
		return st, nil
	default:
		return "", ErrInvalidTransition
	}
}

// Alert is an append-only record for conditions that need a human.
type Alert struct {
	ID          uuid.UUID
	Type        Type
	Severity    Severity
	Title       string
	Description string
	SlotID      *string
	PlateNumber *string
	Details     map[string]any
	Status      Status
	ResolvedBy  *uuid.UUID
	ResolvedAt  *time.Time
	Timestamp   time.Time
	CreatedAt   time.Time
}

type Option func(*Alert)

func WithSlot(slotID string) Option {
	return func(a *Alert) {
		if slotID != "" {
			a.SlotID = &slotID
		}
	}
}

func WithPlate(plate string) Option {
	return func(a *Alert) {
		if plate != "" {
			a.PlateNumber = &plate
		}
	}
}

func WithDetail(key string, value any) Option {
	return func(a *Alert) {
		if a.Details == nil {
			a.Details = map[string]any{}
		}
		a.Details[key] = value
	}
}

func New(typ Type, severity Severity, title, description string, at time.Time, opts ...Option) *Alert {
	a := &Alert{
		ID:          uuid.New(),
		Type:        typ,
		Severity:    severity,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Timestamp:   at,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Transition moves the alert through its review workflow. Resolved and
// dismissed alerts are final.
func (a *Alert) Transition(to Status, by uuid.UUID, at time.Time) error {
	switch a.Status {
	case StatusPending:
		if to != StatusAcknowledged && to != StatusResolved && to != StatusDismissed {
			return ErrInvalidTransition
		}
	case StatusAcknowledged:
		if to != StatusResolved && to != StatusDismissed {
			return ErrInvalidTransition
		}
	default:
		return ErrInvalidTransition
	}
	a.Status = to
	if to == StatusResolved || to == StatusDismissed {
		a.ResolvedBy = &by
		a.ResolvedAt = &at
	}
	return nil
}
