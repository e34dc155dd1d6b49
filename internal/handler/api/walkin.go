package api

import (
	"net/http"

	reqdto "garage-orchestrator/internal/handler/dto/request"
	resdto "garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/handler/httperr"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/gin-gonic/gin"
)

type WalkInHandler struct {
	walkIn usecase.WalkInUseCase
}

func NewWalkInHandler(walkIn usecase.WalkInUseCase) *WalkInHandler {
	return &WalkInHandler{walkIn: walkIn}
}

// @Summary Register a walk-in driver
// @Description Registers the driver and vehicle and issues a short-lived entry permit
// @Tags walk-in
// @Accept json
// @Produce json
// @Param request body reqdto.WalkInRegisterRequest true "Walk-in registration"
// @Success 201 {object} resdto.WalkInResponse
// @Failure 400 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /walk-in/register [post]
func (h *WalkInHandler) Register(c *gin.Context) {
	var req reqdto.WalkInRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	params, err := req.ToUseCase()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request data", nil)
		return
	}

	res, err := h.walkIn.Register(c.Request.Context(), params)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid registration", err.Error())
		case errs.Is(err, usecase.ErrWalkInBlacklisted):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Outstanding balance must be paid before entry", nil)
		case errs.Is(err, usecase.ErrVehicleAlreadyParked):
			httperr.AbortWithError(c, http.StatusConflict, err, "Vehicle is already parked", nil)
		case errs.Is(err, usecase.ErrPaymentAuthorization):
			httperr.AbortWithError(c, http.StatusPaymentRequired, err, "Card authorization failed", nil)
		case errs.Is(err, usecase.ErrPermitStoreUnavailable):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Registration temporarily unavailable", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromWalkIn(res))
}
