//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/handler/api"
	reqdto "garage-orchestrator/internal/handler/dto/request"
	resdto "garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/tests/common/httptest"
	usecasemock "garage-orchestrator/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SessionHandlerTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockExtension *usecasemock.MockExtensionUseCase
	userID        uuid.UUID
}

func (s *SessionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockExtension = usecasemock.NewMockExtensionUseCase(s.mockCtrl)
	s.userID = uuid.New()

	h := api.NewSessionHandler(s.mockExtension)
	s.router.POST("/sessions/:id/extend", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Set("user_id", s.userID)
		}
		h.Extend(c)
	})
}

func (s *SessionHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSessionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SessionHandlerTestSuite))
}

func (s *SessionHandlerTestSuite) TestExtend() {
	sessionID := uuid.New()
	url := "/sessions/" + sessionID.String() + "/extend"
	body := reqdto.ExtendSessionRequest{ExtendForMinutes: 30}

	s.Run("success: returns extended session", func() {
		entry := time.Now().UTC().Truncate(time.Second)
		extended := &session.Session{
			ID:               sessionID,
			UserID:           s.userID,
			SlotID:           "A-01",
			Status:           session.StatusActive,
			EntryTime:        entry,
			ExpectedExitTime: entry.Add(150 * time.Minute),
			IsExtended:       true,
			PaymentMethod:    payment.MethodCash,
		}
		s.mockExtension.EXPECT().Extend(gomock.Any(), s.userID, sessionID, 30).Return(extended, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "token")

		var response resdto.ExtendSessionResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("Parking session extended", response.Message)
		s.Require().NotNil(response.Session)
		s.True(response.Session.IsExtended)
		s.True(response.Session.ExpectedExitTime.Equal(extended.ExpectedExitTime))
	})

	s.Run("error: unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "User not authenticated")
	})

	s.Run("error: malformed session id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/sessions/not-a-uuid/extend", body, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid session id")
	})

	s.Run("error: non-positive minutes rejected at binding", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"extendForMinutes": 0}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		cases := []struct {
			name   string
			err    error
			status int
			msg    string
		}{
			{"not found", errs.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
			{"not owner", session.ErrNotSessionOwner, http.StatusForbidden, "another user"},
			{"not active", errs.Mark(session.ErrNotActive, errs.ErrSessionNotActive), http.StatusConflict, "not active"},
			{"too long", session.ErrExtensionTooLong, http.StatusConflict, "maximum allowed time"},
			{"invalid", session.ErrInvalidExtension, http.StatusBadRequest, "Invalid extension"},
			{"unexpected", errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockExtension.EXPECT().Extend(gomock.Any(), s.userID, sessionID, 30).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "token")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.msg)
			})
		}
	})
}
