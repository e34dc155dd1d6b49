package usecase

import (
	"errors"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrTokenValidation = errors.New("token validation failed")

// TokenValidator resolves a bearer token to the caller's id and role for the
// REST middleware and the live socket handshake.
type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, user.Role, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{jwtService: jwtService}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, user.Role, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrTokenValidation)
	}
	// tokens minted before a role was retired must not keep working
	if !claims.Role.IsValid() {
		return uuid.Nil, "", errs.Mark(errs.Newf("unknown role %q", claims.Role), ErrTokenValidation)
	}
	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrTokenValidation)
	}
	return userID, claims.Role, nil
}
