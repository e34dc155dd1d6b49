package api

import (
	"io"
	"net/http"

	"garage-orchestrator/internal/handler/httperr"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	webhooks usecase.WebhookUseCase
}

func NewWebhookHandler(webhooks usecase.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// @Summary Payment provider webhook
// @Tags webhooks
// @Accept json
// @Success 200
// @Failure 400 {object} httperr.Response
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable body", nil)
		return
	}

	err = h.webhooks.HandlePaymentWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errs.Is(err, usecase.ErrInvalidWebhook) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid webhook signature", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
