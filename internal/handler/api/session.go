package api

import (
	"net/http"

	"garage-orchestrator/internal/domain/session"
	reqdto "garage-orchestrator/internal/handler/dto/request"
	resdto "garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/handler/httperr"
	"garage-orchestrator/internal/handler/middleware"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	extension usecase.ExtensionUseCase
}

func NewSessionHandler(extension usecase.ExtensionUseCase) *SessionHandler {
	return &SessionHandler{extension: extension}
}

// @Summary Extend an active parking session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body reqdto.ExtendSessionRequest true "Extension"
// @Success 200 {object} resdto.ExtendSessionResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /sessions/{id}/extend [post]
func (h *SessionHandler) Extend(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "User not authenticated", nil)
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID, "Invalid session id", nil)
		return
	}
	var req reqdto.ExtendSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	s, err := h.extension.Extend(c.Request.Context(), userID, sessionID, req.ExtendForMinutes)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrSessionNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Session not found", nil)
		case errs.Is(err, session.ErrNotSessionOwner):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Session belongs to another user", nil)
		case errs.Is(err, errs.ErrSessionNotActive):
			httperr.AbortWithError(c, http.StatusConflict, err, "Session is not active", nil)
		case errs.Is(err, session.ErrExtensionTooLong):
			httperr.AbortWithError(c, http.StatusConflict, err, "Extension exceeds the maximum allowed time", nil)
		case errs.Is(err, session.ErrInvalidExtension):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid extension", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.ExtendSessionResponse{
		Message: "Parking session extended",
		Session: resdto.FromSession(s),
	})
}
