package request

import (
	"strings"

	"garage-orchestrator/internal/domain/user"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (r *LoginRequest) ToDomain() (user.Credentials, error) {
	// staff accounts are stored lower case
	return user.NewCredentials(strings.ToLower(strings.TrimSpace(r.Email)), r.Password)
}
