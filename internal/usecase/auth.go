package usecase

import (
	"context"
	"errors"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/pkg/jwt"
	"garage-orchestrator/internal/pkg/password"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserInactive         = errors.New("user account is inactive")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTokenGeneration      = errors.New("token generation failed")
)

type AuthUseCase interface {
	Login(ctx context.Context, credentials user.Credentials) (string, *user.User, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error)
}

type authUseCaseImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
}

func NewAuthUseCase(uow shared.UnitOfWork, jwtService *jwt.Service) AuthUseCase {
	return &authUseCaseImpl{
		uow:        uow,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Login(ctx context.Context, credentials user.Credentials) (string, *user.User, error) {
	u, err := a.validateUser(ctx, credentials)
	if err != nil {
		return "", nil, err
	}

	if !u.Role.IsValid() {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := a.jwtService.GenerateToken(u.ID, u.Role)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	err = a.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Users().UpdateLastLogin(ctx, u.ID)
	})
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

func (a *authUseCaseImpl) validateUser(ctx context.Context, credentials user.Credentials) (*user.User, error) {
	var u *user.User
	err := a.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		u, err = tx.Users().FindByEmail(ctx, credentials.Email())
		return err
	})
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !u.IsActive {
		return nil, ErrUserInactive
	}

	// walk-in drivers have no password and cannot log in
	if !u.CanLogin() {
		return nil, ErrInvalidCredentials
	}

	if err := password.Verify(*u.PasswordHash, credentials.Password().Value()); err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}

	return u, nil
}

func (a *authUseCaseImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var u *user.User
	err := a.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		u, err = tx.Users().FindByID(ctx, userID)
		return err
	})
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}

	if !u.IsActive {
		return nil, ErrUserInactive
	}

	return u, nil
}
