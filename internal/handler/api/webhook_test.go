//go:build unit

package api_test

import (
	"bytes"
	"errors"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"garage-orchestrator/internal/handler/api"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/tests/common/httptest"
	usecasemock "garage-orchestrator/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockWebhooks *usecasemock.MockWebhookUseCase
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockWebhooks = usecasemock.NewMockWebhookUseCase(s.mockCtrl)

	h := api.NewWebhookHandler(s.mockWebhooks)
	s.router.POST("/webhooks/stripe", h.Stripe)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) post(payload []byte, signature string) *nethttptest.ResponseRecorder {
	req := nethttptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	rec := nethttptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *WebhookHandlerTestSuite) TestStripe() {
	payload := []byte(`{"type":"checkout.session.completed"}`)

	s.Run("success: passes raw payload and signature through", func() {
		s.mockWebhooks.EXPECT().HandlePaymentWebhook(gomock.Any(), payload, "t=1,v1=abc").Return(nil).Times(1)

		rec := s.post(payload, "t=1,v1=abc")

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(true, response["received"])
	})

	s.Run("error: bad signature", func() {
		s.mockWebhooks.EXPECT().HandlePaymentWebhook(gomock.Any(), payload, "forged").
			Return(errs.Mark(errors.New("signature mismatch"), usecase.ErrInvalidWebhook)).Times(1)

		rec := s.post(payload, "forged")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid webhook signature")
	})

	s.Run("error: settlement failure is retried by the provider", func() {
		s.mockWebhooks.EXPECT().HandlePaymentWebhook(gomock.Any(), payload, "sig").
			Return(errors.New("db down")).Times(1)

		rec := s.post(payload, "sig")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}
