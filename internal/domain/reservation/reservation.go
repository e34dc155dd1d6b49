package reservation

import (
	"errors"
	"time"

	"garage-orchestrator/internal/domain/payment"

	"github.com/google/uuid"
)

var (
	ErrInvalidWindow = errors.New("start time must be before end time")
	ErrInvalidStatus = errors.New("invalid reservation status")
)

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusFulfilled Status = "FULFILLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusFulfilled:
		return true
	default:
		return false
	}
}

type Window struct {
	Start time.Time
	End   time.Time
}

func NewWindow(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, ErrInvalidWindow
	}
	return Window{Start: start, End: end}, nil
}

// AdmitsArrival reports whether a vehicle arriving at now may use the window,
// allowing it to arrive up to earlyGrace before the start.
func (w Window) AdmitsArrival(now time.Time, earlyGrace time.Duration) bool {
	return !w.Start.After(now.Add(earlyGrace)) && !w.End.Before(now)
}

type Reservation struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	VehicleID       uuid.UUID
	PlateNumber     string
	SlotID          string
	Window          Window
	Status          Status
	IsStacked       bool
	PaymentMethod   payment.Method
	PaymentIntentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r *Reservation) IsConfirmed() bool { return r.Status == StatusConfirmed }

// Fulfill marks the reservation used by an entry, recording the slot the
// vehicle actually received.
func (r *Reservation) Fulfill(slotID string) {
	r.Status = StatusFulfilled
	r.SlotID = slotID
}
