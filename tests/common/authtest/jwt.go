//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := jwt.NewService(h.cfg.Secret, duration).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, -time.Hour).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

// ForeignToken is signed with a secret the service does not know.
func (h *JWTHelper) ForeignToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret+"-other", time.Hour).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}
