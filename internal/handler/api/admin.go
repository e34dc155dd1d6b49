package api

import (
	"context"
	"net/http"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/slot"
	reqdto "garage-orchestrator/internal/handler/dto/request"
	resdto "garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/handler/httperr"
	"garage-orchestrator/internal/handler/middleware"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JobReporter exposes the scheduler's bookkeeping to operators.
type JobReporter interface {
	Stats(ctx context.Context) ([]jobqueue.Stat, error)
	Retry(ctx context.Context, id job.ID) error
}

type AdminHandler struct {
	admin   usecase.AdminUseCase
	devices usecase.DeviceUseCase
	jobs    JobReporter
}

func NewAdminHandler(admin usecase.AdminUseCase, devices usecase.DeviceUseCase, jobs JobReporter) *AdminHandler {
	return &AdminHandler{admin: admin, devices: devices, jobs: jobs}
}

// @Summary List slots
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Slot status"
// @Success 200 {array} resdto.SlotResponse
// @Router /admin/slots [get]
func (h *AdminHandler) ListSlots(c *gin.Context) {
	var q reqdto.SlotListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	views, err := h.admin.ListSlots(c.Request.Context(), q.StatusFilter())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlotViews(views))
}

// @Summary Get slot
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} resdto.SlotResponse
// @Failure 404 {object} httperr.Response
// @Router /admin/slots/{id} [get]
func (h *AdminHandler) GetSlot(c *gin.Context) {
	view, err := h.admin.GetSlot(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errs.Is(err, errs.ErrSlotNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Slot not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlotView(view))
}

// @Summary Change slot service status
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param request body reqdto.SetSlotStatusRequest true "New status"
// @Success 200 {object} resdto.SlotResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/slots/{id}/status [patch]
func (h *AdminHandler) SetSlotStatus(c *gin.Context) {
	var req reqdto.SetSlotStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	s, err := h.admin.SetSlotStatus(c.Request.Context(), c.Param("id"), slot.Status(req.Status))
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrSlotNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Slot not found", nil)
		case errs.Is(err, errs.ErrSlotStateNotMet):
			httperr.AbortWithError(c, http.StatusConflict, err, "Slot currently holds a vehicle", nil)
		case errs.Is(err, errs.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Unsupported status", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlot(s))
}

// @Summary List alerts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.AlertResponse
// @Router /admin/alerts [get]
func (h *AdminHandler) ListAlerts(c *gin.Context) {
	var q reqdto.AlertListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	alerts, err := h.admin.ListAlerts(c.Request.Context(), q.ToFilter())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAlerts(alerts))
}

// @Summary Acknowledge, resolve or dismiss an alert
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Param request body reqdto.TransitionAlertRequest true "Target status"
// @Success 200 {object} resdto.AlertResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/alerts/{id} [patch]
func (h *AdminHandler) TransitionAlert(c *gin.Context) {
	operatorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "User not authenticated", nil)
		return
	}
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID, "Invalid alert id", nil)
		return
	}
	var req reqdto.TransitionAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	a, err := h.admin.TransitionAlert(c.Request.Context(), alertID, alert.Status(req.Status), operatorID)
	if err != nil {
		switch {
		case errs.Is(err, usecase.ErrAlertNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Alert not found", nil)
		case errs.Is(err, alert.ErrInvalidTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Alert cannot move to that status", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromAlert(a))
}

// @Summary List parking sessions
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.SessionResponse
// @Router /admin/sessions [get]
func (h *AdminHandler) ListSessions(c *gin.Context) {
	var q reqdto.SessionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	sessions, err := h.admin.ListSessions(c.Request.Context(), q.ToFilter())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSessions(sessions))
}

// @Summary List gate and camera controllers
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.DeviceResponse
// @Router /admin/devices [get]
func (h *AdminHandler) ListDevices(c *gin.Context) {
	devices, err := h.devices.List(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDevices(devices))
}

// @Summary Job queue statistics
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.JobStatResponse
// @Router /admin/jobs [get]
func (h *AdminHandler) JobStats(c *gin.Context) {
	stats, err := h.jobs.Stats(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromJobStats(stats))
}

// @Summary Requeue a dead job
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 204 "No Content"
// @Failure 404 {object} httperr.Response
// @Router /admin/jobs/{id}/retry [post]
func (h *AdminHandler) RetryJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID, "Invalid job id", nil)
		return
	}
	if err := h.jobs.Retry(c.Request.Context(), id); err != nil {
		if infra.IsNotFound(err) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Dead job not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
