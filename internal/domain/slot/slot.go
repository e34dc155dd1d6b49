package slot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus     = errors.New("invalid slot status")
	ErrInvalidType       = errors.New("invalid slot type")
	ErrInvalidID         = errors.New("slot id must not be empty")
	ErrVehicleInvariant  = errors.New("current vehicle does not match slot status")
	ErrConflictInvariant = errors.New("conflict details present outside CONFLICT status")
)

type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusAssigned    Status = "ASSIGNED"
	StatusOccupied    Status = "OCCUPIED"
	StatusConflict    Status = "CONFLICT"
	StatusMaintenance Status = "MAINTENANCE"
	StatusDisabled    Status = "DISABLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusOccupied, StatusConflict, StatusMaintenance, StatusDisabled:
		return true
	default:
		return false
	}
}

// HoldsVehicle reports whether a slot in this status must carry a current vehicle.
func (s Status) HoldsVehicle() bool {
	return s == StatusAssigned || s == StatusOccupied || s == StatusConflict
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

type Type string

const (
	TypeRegular   Type = "REGULAR"
	TypeEmergency Type = "EMERGENCY"
)

func ParseType(s string) (Type, error) {
	t := Type(s)
	if t != TypeRegular && t != TypeEmergency {
		return "", ErrInvalidType
	}
	return t, nil
}

type CurrentVehicle struct {
	PlateNumber   string     `json:"plate_number"`
	OccupiedSince *time.Time `json:"occupied_since,omitempty"`
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
}

type ConflictDetails struct {
	ExpectedPlate string     `json:"expected_plate"`
	ActualPlate   string     `json:"actual_plate"`
	SessionID     *uuid.UUID `json:"session_id,omitempty"`
}

type Stats struct {
	TotalUsesToday         int        `json:"total_uses_today"`
	AverageDurationMinutes float64    `json:"average_duration_minutes"`
	LastCleaned            *time.Time `json:"last_cleaned,omitempty"`
}

// Slot is the live occupancy document of one physical space.
type Slot struct {
	ID              string           `json:"id"`
	Status          Status           `json:"status"`
	CurrentVehicle  *CurrentVehicle  `json:"current_vehicle"`
	ConflictDetails *ConflictDetails `json:"conflict_details,omitempty"`
	Stats           Stats            `json:"stats"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func New(id string) (*Slot, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return &Slot{ID: id, Status: StatusAvailable}, nil
}

// ExpectedPlate returns the plate the slot is waiting for or holding, or "".
func (s *Slot) ExpectedPlate() string {
	if s.CurrentVehicle == nil {
		return ""
	}
	return s.CurrentVehicle.PlateNumber
}

func (s *Slot) SessionID() *uuid.UUID {
	if s.CurrentVehicle == nil {
		return nil
	}
	return s.CurrentVehicle.SessionID
}

func (s *Slot) Assign(plate string, sessionID *uuid.UUID) {
	s.Status = StatusAssigned
	s.CurrentVehicle = &CurrentVehicle{PlateNumber: plate, SessionID: sessionID}
	s.ConflictDetails = nil
}

// Occupy confirms the expected vehicle arrived.
func (s *Slot) Occupy(at time.Time) {
	s.Status = StatusOccupied
	if s.CurrentVehicle == nil {
		s.CurrentVehicle = &CurrentVehicle{}
	}
	s.CurrentVehicle.OccupiedSince = &at
	s.Stats.TotalUsesToday++
}

// OccupyUnauthorized records a vehicle that parked without an assignment.
func (s *Slot) OccupyUnauthorized(plate string, at time.Time) {
	s.Status = StatusOccupied
	s.CurrentVehicle = &CurrentVehicle{PlateNumber: plate, OccupiedSince: &at}
	s.ConflictDetails = nil
	s.Stats.TotalUsesToday++
}

// OccupyUnknown marks the slot occupied when the camera could not read a plate.
// It is the only state where an OCCUPIED slot has no current vehicle.
func (s *Slot) OccupyUnknown() {
	s.Status = StatusOccupied
	s.CurrentVehicle = nil
	s.ConflictDetails = nil
}

func (s *Slot) MarkConflict(actualPlate string, at time.Time) {
	expected := s.ExpectedPlate()
	sessionID := s.SessionID()
	s.Status = StatusConflict
	s.CurrentVehicle = &CurrentVehicle{PlateNumber: actualPlate, OccupiedSince: &at}
	s.ConflictDetails = &ConflictDetails{
		ExpectedPlate: expected,
		ActualPlate:   actualPlate,
		SessionID:     sessionID,
	}
	s.Stats.TotalUsesToday++
}

func (s *Slot) Release() {
	s.Status = StatusAvailable
	s.CurrentVehicle = nil
	s.ConflictDetails = nil
}

// RecordStay folds a finished stay into the rolling average duration.
func (s *Slot) RecordStay(minutes float64) {
	n := s.Stats.TotalUsesToday
	if n < 1 {
		n = 1
	}
	s.Stats.AverageDurationMinutes += (minutes - s.Stats.AverageDurationMinutes) / float64(n)
}

func (s *Slot) SetMaintenance() {
	s.Status = StatusMaintenance
	s.CurrentVehicle = nil
	s.ConflictDetails = nil
}

func (s *Slot) Disable() {
	s.Status = StatusDisabled
	s.CurrentVehicle = nil
	s.ConflictDetails = nil
}

func (s *Slot) MarkCleaned(at time.Time) {
	s.Release()
	s.Stats.LastCleaned = &at
}

func (s *Slot) Validate() error {
	if s.ID == "" {
		return ErrInvalidID
	}
	if !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	hasVehicle := s.CurrentVehicle != nil
	if hasVehicle != s.Status.HoldsVehicle() {
		if !(s.Status == StatusOccupied && !hasVehicle) {
			return ErrVehicleInvariant
		}
	}
	if s.ConflictDetails != nil && s.Status != StatusConflict {
		return ErrConflictInvariant
	}
	return nil
}

// Contains reports whether st is one of the given statuses. An empty set matches anything.
func Contains(set []Status, st Status) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}
