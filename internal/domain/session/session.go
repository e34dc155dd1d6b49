package session

import (
	"errors"
	"time"

	"garage-orchestrator/internal/domain/billing"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"

	"github.com/google/uuid"
)

var (
	ErrNotActive         = errors.New("session is not active")
	ErrExtensionTooLong  = errors.New("extension exceeds the maximum allowed exit time")
	ErrInvalidExtension  = errors.New("extension must be a positive number of minutes")
	ErrNotSessionOwner   = errors.New("session belongs to another user")
	ErrPaymentIntentMiss = errors.New("card session requires a payment intent")
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Session is one vehicle's continuous occupancy of the garage.
type Session struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	VehicleID           uuid.UUID
	SlotID              string
	Status              Status
	EntryTime           time.Time
	ExpectedExitTime    time.Time
	ExitTime            *time.Time
	OvertimeStart       *time.Time
	OvertimeEnd         *time.Time
	IsExtended          bool
	InvolvedInConflict  bool
	ReservationID       *uuid.UUID
	PaymentMethod       payment.Method
	PaymentIntentID     *string
	ExitCheckJobID      *job.ID
	OccupancyCheckJobID *job.ID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type StartParams struct {
	UserID              uuid.UUID
	VehicleID           uuid.UUID
	SlotID              string
	EntryTime           time.Time
	ExpectedExitTime    time.Time
	ReservationID       *uuid.UUID
	PaymentMethod       payment.Method
	PaymentIntentID     *string
	ExitCheckJobID      *job.ID
	OccupancyCheckJobID *job.ID
}

func Start(p StartParams) (*Session, error) {
	if p.PaymentMethod == payment.MethodCard && (p.PaymentIntentID == nil || *p.PaymentIntentID == "") {
		return nil, ErrPaymentIntentMiss
	}
	return &Session{
		ID:                  uuid.New(),
		UserID:              p.UserID,
		VehicleID:           p.VehicleID,
		SlotID:              p.SlotID,
		Status:              StatusActive,
		EntryTime:           p.EntryTime,
		ExpectedExitTime:    p.ExpectedExitTime,
		ReservationID:       p.ReservationID,
		PaymentMethod:       p.PaymentMethod,
		PaymentIntentID:     p.PaymentIntentID,
		ExitCheckJobID:      p.ExitCheckJobID,
		OccupancyCheckJobID: p.OccupancyCheckJobID,
	}, nil
}

func (s *Session) IsActive() bool { return s.Status == StatusActive }

func (s *Session) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// IsWalkIn reports whether the session started without a reservation.
func (s *Session) IsWalkIn() bool { return s.ReservationID == nil }

func (s *Session) Complete(at time.Time) {
	s.Status = StatusCompleted
	s.ExitTime = &at
	s.ExitCheckJobID = nil
	s.OccupancyCheckJobID = nil
}

func (s *Session) Cancel(at time.Time) {
	s.Status = StatusCancelled
	s.ExitTime = &at
	s.ExitCheckJobID = nil
	s.OccupancyCheckJobID = nil
}

// StartOvertime anchors the penalty window. It returns false when overtime
// was already started, so repeated firings never move the anchor.
func (s *Session) StartOvertime(at time.Time) bool {
	if s.OvertimeStart != nil {
		return false
	}
	s.OvertimeStart = &at
	return true
}

func (s *Session) InOvertime() bool {
	return s.OvertimeStart != nil && s.OvertimeEnd == nil
}

// Extend moves the expected exit forward. now closes an open overtime window.
func (s *Session) Extend(minutes int, maxExit, now time.Time) (time.Time, error) {
	if !s.IsActive() {
		return time.Time{}, ErrNotActive
	}
	if minutes <= 0 {
		return time.Time{}, ErrInvalidExtension
	}
	newExit := s.ExpectedExitTime.Add(time.Duration(minutes) * time.Minute)
	if newExit.After(maxExit) {
		return time.Time{}, ErrExtensionTooLong
	}
	s.ExpectedExitTime = newExit
	s.IsExtended = true
	if s.InOvertime() {
		s.OvertimeEnd = &now
	}
	return newExit, nil
}

func (s *Session) BillingInput() billing.Input {
	return billing.Input{
		EntryTime:          s.EntryTime,
		ExitTime:           s.ExitTime,
		OvertimeStart:      s.OvertimeStart,
		OvertimeEnd:        s.OvertimeEnd,
		InvolvedInConflict: s.InvolvedInConflict,
	}
}

// StayMinutes is the elapsed stay used for slot statistics.
func (s *Session) StayMinutes() float64 {
	if s.ExitTime == nil || s.ExitTime.Before(s.EntryTime) {
		return 0
	}
	return s.ExitTime.Sub(s.EntryTime).Minutes()
}

// MaxExtensionTime bounds how far a session may be extended. When another
// confirmed reservation follows on the same slot, both the early-entry grace of
// that reservation and the exit grace of this session are kept free before it.
func MaxExtensionTime(now time.Time, nextReservationStart *time.Time, entryGrace, exitGrace, maxExtension time.Duration) time.Time {
	if nextReservationStart == nil {
		return now.Add(maxExtension)
	}
	return nextReservationStart.Add(-entryGrace).Add(-exitGrace)
}
