//go:build e2e

package auth_test

import (
	"fmt"
	"net/http"
	"testing"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/handler/dto/request"
	"garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/tests/common/authtest"
	"garage-orchestrator/tests/common/dbtest"
	"garage-orchestrator/tests/common/httptest"
	"garage-orchestrator/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL  = "/api/auth/login"
	logoutURL = "/api/auth/logout"
	meURL     = "/api/auth/me"
	slotsURL  = "/api/admin/slots"
	jobsRetry = "/api/admin/jobs/%s/retry"
)

type authSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	dbtest.CreateTestUser(s.T(), s.DB, "admin@example.com", string(user.RoleAdmin))
	dbtest.CreateTestUser(s.T(), s.DB, "operator@example.com", string(user.RoleOperator))
	dbtest.CreateTestUser(s.T(), s.DB, "driver@example.com", string(user.RoleDriver))
	dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", string(user.RoleOperator))
	dbtest.DeactivateUser(s.T(), s.DB, "inactive@example.com")
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{"valid credentials", "operator@example.com", dbtest.DefaultPassword, http.StatusOK},
		{"unknown user", "nobody@example.com", dbtest.DefaultPassword, http.StatusUnauthorized},
		{"wrong password", "operator@example.com", "wrongpass", http.StatusUnauthorized},
		{"inactive account", "inactive@example.com", dbtest.DefaultPassword, http.StatusForbidden},
		{"missing email", "", dbtest.DefaultPassword, http.StatusBadRequest},
		{"short password", "operator@example.com", "short", http.StatusBadRequest},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL,
				request.LoginRequest{Email: tt.email, Password: tt.password}, "")
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus != http.StatusOK {
				return
			}
			var res response.LoginResponse
			require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
			require.NotEmpty(t, res.AccessToken)
			require.Equal(t, string(user.RoleOperator), res.User.Role)

			var lastLogin *string
			err := s.DB.QueryRow(t.Context(), "SELECT last_login::text FROM users WHERE email = $1", tt.email).Scan(&lastLogin)
			require.NoError(t, err)
			require.NotNil(t, lastLogin, "last_login not updated")
		})
	}
}

func (s *authSuite) TestMeAndLogout() {
	s.Run("me returns the logged in user", func() {
		t := s.T()
		token := authtest.LoginUser(t, s.Router, "admin@example.com", dbtest.DefaultPassword)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)

		var me response.UserResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &me)
		require.Equal(t, "admin@example.com", me.Email.String)
		require.Equal(t, string(user.RoleAdmin), me.Role)
	})

	s.Run("logout is accepted with a valid token", func() {
		t := s.T()
		token := authtest.LoginUser(t, s.Router, "driver@example.com", dbtest.DefaultPassword)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, logoutURL, nil, token)

		require.Equal(t, http.StatusNoContent, w.Code)
	})

	s.Run("me for a deleted user", func() {
		t := s.T()
		token := s.jwt.GenerateToken(t, uuid.New(), user.RoleDriver)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func (s *authSuite) TestTokenRejection() {
	tests := []struct {
		name  string
		token func() string
	}{
		{"no token", func() string { return "" }},
		{"garbage", func() string { return "not-a-jwt" }},
		{"expired", func() string { return s.jwt.CreateExpiredToken(s.T(), uuid.New(), user.RoleAdmin) }},
		{"foreign signature", func() string { return s.jwt.ForeignToken(s.T(), uuid.New(), user.RoleAdmin) }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, tt.token())
			httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "")
		})
	}
}

func (s *authSuite) TestRoleGates() {
	tests := []struct {
		name      string
		email     string
		slotsCode int
		retryCode int
	}{
		{"driver", "driver@example.com", http.StatusForbidden, http.StatusForbidden},
		{"operator", "operator@example.com", http.StatusOK, http.StatusForbidden},
		{"admin", "admin@example.com", http.StatusOK, http.StatusNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()
			token := authtest.LoginUser(t, s.Router, tt.email, dbtest.DefaultPassword)

			w := httptest.PerformRequest(t, s.Router, http.MethodGet, slotsURL, nil, token)
			require.Equal(t, tt.slotsCode, w.Code, w.Body.String())

			w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(jobsRetry, uuid.NewString()), nil, token)
			require.Equal(t, tt.retryCode, w.Code, w.Body.String())
		})
	}
}
