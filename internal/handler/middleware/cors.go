package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"garage-orchestrator/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewCORSMiddleware serves the operator dashboard. The live socket upgrade
// is checked separately by OriginChecker because gorilla does its own check.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		AllowWebSockets:  true,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	slog.Info("CORS middleware initialized", "allow_origins", cfg.AllowOrigins)
	return cors.New(corsCfg)
}

// OriginChecker accepts websocket handshakes from the configured dashboard
// origins. Requests without an Origin header come from non-browser clients
// and are let through; they still need a bearer token.
func OriginChecker(cfg config.CORSConfig) func(*http.Request) bool {
	allowAll := slices.Contains(cfg.AllowOrigins, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowAll || slices.Contains(cfg.AllowOrigins, origin)
	}
}
