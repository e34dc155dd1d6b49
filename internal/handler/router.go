package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/handler/api"
	"garage-orchestrator/internal/handler/middleware"
	"garage-orchestrator/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups everything the router mounts.
type Handlers struct {
	fx.In

	Auth    *api.AuthHandler
	WalkIn  *api.WalkInHandler
	Webhook *api.WebhookHandler
	Session *api.SessionHandler
	Admin   *api.AdminHandler
	Live    *api.LiveHandler
	Metrics http.Handler `name:"metrics"`
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger.GetSlogLogger()))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	if h.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(h.Metrics))
	}

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	operatorOnly := []gin.HandlerFunc{
		authMiddleware.RequireAuth(),
		authMiddleware.RequireRoleAtLeast(user.RoleOperator),
	}

	addRoutes(engine.Group("/ws"), []route{
		{Method: http.MethodGet, Path: "/live", Handler: h.Live.Serve, Mw: operatorOnly},
	})

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/walk-in/register", Handler: h.WalkIn.Register},
			{Method: http.MethodPost, Path: "/webhooks/stripe", Handler: h.Webhook.Stripe},
		})

		sessions := apiGroup.Group("/sessions")
		sessions.Use(authMiddleware.RequireAuth())
		{
			addRoutes(sessions, []route{
				{Method: http.MethodPost, Path: "/:id/extend", Handler: h.Session.Extend},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(operatorOnly...)
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/slots", Handler: h.Admin.ListSlots},
				{Method: http.MethodGet, Path: "/slots/:id", Handler: h.Admin.GetSlot},
				{Method: http.MethodPatch, Path: "/slots/:id/status", Handler: h.Admin.SetSlotStatus},
				{Method: http.MethodGet, Path: "/alerts", Handler: h.Admin.ListAlerts},
				{Method: http.MethodPatch, Path: "/alerts/:id", Handler: h.Admin.TransitionAlert},
				{Method: http.MethodGet, Path: "/sessions", Handler: h.Admin.ListSessions},
				{Method: http.MethodGet, Path: "/devices", Handler: h.Admin.ListDevices},
				{Method: http.MethodGet, Path: "/jobs", Handler: h.Admin.JobStats},
				{
					Method:  http.MethodPost,
					Path:    "/jobs/:id/retry",
					Handler: h.Admin.RetryJob,
					Mw:      []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleAdmin)},
				},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
