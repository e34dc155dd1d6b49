//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/handler/api"
	reqdto "garage-orchestrator/internal/handler/dto/request"
	resdto "garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/tests/common/builder"
	"garage-orchestrator/tests/common/httptest"
	"garage-orchestrator/tests/common/testutil"
	usecasemock "garage-orchestrator/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	mockCtrl *gomock.Controller
	mockAuth *usecasemock.MockAuthUseCase
	handler  *api.AuthHandler
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockAuth = usecasemock.NewMockAuthUseCase(s.mockCtrl)
	s.handler = api.NewAuthHandler(s.mockAuth)

	s.router.POST("/auth/login", s.handler.Login)
	s.router.POST("/auth/logout", s.handler.Logout)
	s.router.GET("/auth/me", func(c *gin.Context) {
		// stands in for RequireAuth
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			c.Set("user_id", uuid.New())
		}
		s.handler.Me(c)
	})
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

type testCaseAuth struct {
	name       string
	mutate     testutil.Mutation
	expectCode int
}

func credentials(s *AuthHandlerTestSuite, email, password string) user.Credentials {
	c, err := user.NewCredentials(email, password)
	s.Require().NoError(err)
	return c
}

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"

	reqBody := reqdto.LoginRequest{Email: "test@example.com", Password: "password123"}
	returnUser := builder.NewUserBuilder().BuildStored()
	expectedToken := "test-jwt-token"

	s.Run("success: returns 200 OK with token and user", func() {
		s.mockAuth.EXPECT().Login(gomock.Any(), credentials(s, reqBody.Email, reqBody.Password)).
			Return(expectedToken, returnUser, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.LoginResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(expectedToken, response.AccessToken)
		s.Require().NotNil(response.User)
		s.Equal(*returnUser.Email, response.User.Email.String)
		s.Equal("operator", response.User.Role)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []testCaseAuth{
			{name: "valid email", mutate: testutil.Set("email", "valid@example.com"), expectCode: http.StatusOK},
			{name: "invalid email", mutate: testutil.Set("email", "invalid-email"), expectCode: http.StatusBadRequest},
			{name: "password of 8 chars", mutate: testutil.Set("password", "password"), expectCode: http.StatusOK},
			{name: "password of 7 chars", mutate: testutil.Set("password", strings.Repeat("a", 7)), expectCode: http.StatusBadRequest},
			{name: "missing email", mutate: testutil.Drop("email"), expectCode: http.StatusBadRequest},
			{name: "missing password", mutate: testutil.Drop("password"), expectCode: http.StatusBadRequest},
			{name: "empty email", mutate: testutil.Set("email", ""), expectCode: http.StatusBadRequest},
			{name: "empty password", mutate: testutil.Set("password", ""), expectCode: http.StatusBadRequest},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.Payload(s.T(), reqBody, tc.mutate)

				if tc.expectCode == http.StatusOK {
					email, _ := requestMap["email"].(string)
					password, _ := requestMap["password"].(string)
					s.mockAuth.EXPECT().Login(gomock.Any(), credentials(s, email, password)).
						Return(expectedToken, returnUser, nil)
				}
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "")
				if tc.expectCode == http.StatusOK {
					httptest.AssertSuccessResponse(s.T(), rec, tc.expectCode, nil)
				} else {
					httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "")
				}
			})
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			useCaseErr     error
			expectedStatus int
			expectedMsg    string
		}{
			{"invalid credentials", usecase.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
			{"user not found", usecase.ErrUserNotFound, http.StatusUnauthorized, "Invalid email or password"},
			{"user inactive", usecase.ErrUserInactive, http.StatusForbidden, "Account is inactive"},
			{"internal server error", errors.New("database error"), http.StatusInternalServerError, "Internal server error"},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockAuth.EXPECT().Login(gomock.Any(), gomock.Any()).
					Return("", nil, tc.useCaseErr).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

func (s *AuthHandlerTestSuite) TestLogout() {
	s.Run("success: returns 204 No Content", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/logout", nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *AuthHandlerTestSuite) TestMe() {
	url := "/auth/me"
	returnUser := builder.NewUserBuilder().BuildStored()

	s.Run("success: returns current user info", func() {
		s.mockAuth.EXPECT().GetCurrentUser(gomock.Any(), gomock.Any()).
			Return(returnUser, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(*returnUser.Email, response["email"])
	})

	s.Run("error: returns 401 when user_id missing in context", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "User not authenticated")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			useCaseErr     error
			expectedStatus int
			expectedMsg    string
		}{
			{"user not found", usecase.ErrUserNotFound, http.StatusNotFound, "User not found"},
			{"user inactive", usecase.ErrUserInactive, http.StatusForbidden, "Account is inactive"},
			{"internal server error", errors.New("database error"), http.StatusInternalServerError, "Internal server error"},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockAuth.EXPECT().GetCurrentUser(gomock.Any(), gomock.Any()).
					Return(nil, tc.useCaseErr).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}
