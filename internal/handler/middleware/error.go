package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"garage-orchestrator/internal/handler/httperr"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler answers for handlers that recorded an error without writing a
// body. Public errors carry their response in Meta; anything else becomes a
// generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		for i := len(c.Errors) - 1; i >= 0; i-- {
			if resp, ok := c.Errors[i].Meta.(httperr.Response); ok && c.Errors[i].IsType(gin.ErrorTypePublic) {
				c.JSON(resp.Status, resp)
				return
			}
		}
		c.JSON(http.StatusInternalServerError,
			httperr.NewResponse(c, http.StatusInternalServerError, "Internal server error", nil))
	}
}

// CustomRecovery turns a handler panic into a 500 and logs the top of the stack.
func CustomRecovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := errs.Newf("panic: %v", rec)
				logger.ErrorContext(c.Request.Context(), "recovered from panic",
					slog.String("error", fmt.Sprint(rec)),
					slog.String("path", c.Request.URL.Path),
					slog.Any("stack", errs.ExtractStackLines(err, 12)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					httperr.NewResponse(c, http.StatusInternalServerError, "Internal server error", nil))
			}
		}()
		c.Next()
	}
}
