package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a driver or staff account. Walk-in drivers are created on the fly
// by phone number and carry no password.
type User struct {
	ID                 uuid.UUID
	Name               string
	Email              *string
	Phone              *string
	PasswordHash       *string
	Role               Role
	PushToken          *string
	StripeCustomerID   *string
	HasOutstandingDebt bool
	IsActive           bool
	LastLogin          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewWalkIn(name string, phone Phone, email *Email) *User {
	p := phone.Value()
	u := &User{
		ID:       uuid.New(),
		Name:     name,
		Phone:    &p,
		Role:     RoleDriver,
		IsActive: true,
	}
	if email != nil {
		e := email.Value()
		u.Email = &e
	}
	return u
}

func NewStaff(name string, email Email, passwordHash string, role Role) *User {
	e := email.Value()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        &e,
		PasswordHash: &passwordHash,
		Role:         role,
		IsActive:     true,
	}
}

func (u *User) CanLogin() bool {
	return u.IsActive && u.PasswordHash != nil
}
