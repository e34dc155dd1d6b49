//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret"

func TestRoundTrip(t *testing.T) {
	svc := jwt.NewService(secret, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, user.RoleOperator)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, user.RoleOperator, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := jwt.NewService(secret, time.Hour)

	expired, err := jwt.NewService(secret, -time.Hour).GenerateToken(uuid.New(), user.RoleAdmin)
	require.NoError(t, err)
	foreign, err := jwt.NewService("other-secret", time.Hour).GenerateToken(uuid.New(), user.RoleAdmin)
	require.NoError(t, err)
	wrongIssuer, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{
		Role: user.RoleAdmin,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   uuid.NewString(),
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	noSubject, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{
		Role: user.RoleAdmin,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "garage-orchestrator",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", expired, jwt.ErrExpiredToken},
		{"foreign signature", foreign, jwt.ErrInvalidToken},
		{"wrong issuer", wrongIssuer, jwt.ErrInvalidToken},
		{"missing subject", noSubject, jwt.ErrInvalidToken},
		{"garbage", "not.a.token", jwt.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
