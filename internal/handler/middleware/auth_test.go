//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/handler/middleware"
	usecasemock "garage-orchestrator/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, minRole user.Role) (*gin.Engine, *usecasemock.MockTokenValidator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator := usecasemock.NewMockTokenValidator(gomock.NewController(t))
	auth := middleware.NewAuthMiddleware(validator)

	r := gin.New()
	r.GET("/protected", auth.RequireAuth(), auth.RequireRoleAtLeast(minRole), func(c *gin.Context) {
		id, _ := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String(), "role": string(role)})
	})
	return r, validator
}

func get(r *gin.Engine, target, authorization string) *nethttptest.ResponseRecorder {
	req := nethttptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := nethttptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()

	t.Run("valid bearer token", func(t *testing.T) {
		r, validator := newRouter(t, user.RoleDriver)
		validator.EXPECT().ValidateToken("good").Return(userID, user.RoleOperator, nil).Times(1)

		rec := get(r, "/protected", "Bearer good")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), userID.String())
		assert.Contains(t, rec.Body.String(), "operator")
	})

	t.Run("missing token", func(t *testing.T) {
		r, _ := newRouter(t, user.RoleDriver)

		rec := get(r, "/protected", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Access token required")
	})

	t.Run("query token is only read on websocket upgrades", func(t *testing.T) {
		r, _ := newRouter(t, user.RoleDriver)

		rec := get(r, "/protected?access_token=good", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		r, validator := newRouter(t, user.RoleDriver)
		validator.EXPECT().ValidateToken("expired").Return(uuid.Nil, user.Role(""), errors.New("token is expired")).Times(1)

		rec := get(r, "/protected", "Bearer expired")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	})
}

func TestRequireRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		role     user.Role
		minRole  user.Role
		wantCode int
	}{
		{"admin passes operator gate", user.RoleAdmin, user.RoleOperator, http.StatusOK},
		{"operator passes operator gate", user.RoleOperator, user.RoleOperator, http.StatusOK},
		{"driver blocked from operator gate", user.RoleDriver, user.RoleOperator, http.StatusForbidden},
		{"operator blocked from admin gate", user.RoleOperator, user.RoleAdmin, http.StatusForbidden},
		{"unknown role blocked", user.Role("guest"), user.RoleDriver, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, validator := newRouter(t, tt.minRole)
			validator.EXPECT().ValidateToken("tok").Return(uuid.New(), tt.role, nil).Times(1)

			rec := get(r, "/protected", "Bearer tok")

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
