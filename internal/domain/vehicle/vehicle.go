package vehicle

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPlate = errors.New("plate number must be 3 to 10 characters")

type Plate struct {
	value string
}

func NewPlate(s string) (Plate, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 || len(s) > 10 {
		return Plate{}, ErrInvalidPlate
	}
	return Plate{value: s}, nil
}

func (p Plate) String() string { return p.value }

type Vehicle struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	Plate              string
	HasOutstandingDebt bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func New(userID uuid.UUID, plate Plate) *Vehicle {
	return &Vehicle{ID: uuid.New(), UserID: userID, Plate: plate.String()}
}
