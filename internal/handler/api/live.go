package api

import (
	"net/http"

	"garage-orchestrator/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// LiveServer upgrades a request to the dashboard feed.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

type LiveHandler struct {
	hub LiveServer
}

func NewLiveHandler(hub LiveServer) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// @Summary Live dashboard feed
// @Description Streams slot, alert and device updates over a websocket
// @Tags live
// @Param access_token query string true "Operator token"
// @Router /ws/live [get]
func (h *LiveHandler) Serve(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request); err != nil {
		// the upgrader already wrote its own response on handshake failures
		if !c.Writer.Written() {
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Live feed unavailable", nil)
			return
		}
		_ = c.Error(err)
	}
}
