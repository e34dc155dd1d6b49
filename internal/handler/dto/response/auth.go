package response

import (
	"time"

	"garage-orchestrator/internal/domain/user"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

type UserResponse struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	Email              null.String `json:"email"`
	Phone              null.String `json:"phone"`
	Role               string      `json:"role"`
	HasOutstandingDebt bool        `json:"hasOutstandingDebt"`
	LastLogin          null.Time   `json:"lastLogin"`
	CreatedAt          time.Time   `json:"createdAt"`
}

type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        *UserResponse `json:"user"`
}

func FromUser(u *user.User) *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              null.StringFromPtr(u.Email),
		Phone:              null.StringFromPtr(u.Phone),
		Role:               string(u.Role),
		HasOutstandingDebt: u.HasOutstandingDebt,
		LastLogin:          null.TimeFromPtr(u.LastLogin),
		CreatedAt:          u.CreatedAt,
	}
}
