package components

import (
	"garage-orchestrator/internal/handler"
	"garage-orchestrator/internal/handler/api"
	"garage-orchestrator/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewWalkInHandler,
		api.NewWebhookHandler,
		api.NewSessionHandler,
		api.NewAdminHandler,
		api.NewLiveHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
