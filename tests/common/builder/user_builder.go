//go:build unit || e2e

package builder

import (
	"time"

	"garage-orchestrator/internal/domain/user"

	"github.com/google/uuid"
)

type UserBuilder struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		Name:         "Test Operator",
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Role:         "operator",
		IsActive:     true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// Build methods
func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}

	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}

	staff := user.NewStaff(u.Name, email, u.PasswordHash, role)
	staff.IsActive = u.IsActive
	return staff, nil
}

// BuildStored returns a user as the ledger would hand it back.
func (u *UserBuilder) BuildStored() *user.User {
	now := time.Now().UTC().Truncate(time.Second)
	email := u.Email
	hash := u.PasswordHash
	return &user.User{
		ID:           uuid.New(),
		Name:         u.Name,
		Email:        &email,
		PasswordHash: &hash,
		Role:         user.Role(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Fluent builder methods
func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}
