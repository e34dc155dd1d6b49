package components

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/handler/api"
	"garage-orchestrator/internal/handler/middleware"
	"garage-orchestrator/internal/infra/bus"
	"garage-orchestrator/internal/infra/gateway"
	"garage-orchestrator/internal/infra/notify"
	"garage-orchestrator/internal/infra/realtime"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"

	"go.uber.org/fx"
)

var IntegrationModule = fx.Module("integration",
	fx.Provide(
		// Payment
		fx.Annotate(
			NewPaymentGateway,
			fx.As(new(usecase.PaymentGateway)),
		),
		// Notifications
		fx.Annotate(
			NewPushSender,
			fx.As(new(usecase.PushSender)),
		),
		NewSMSSender,
		// Live dashboard
		NewHub,
		func(h *realtime.Hub) usecase.Broadcaster { return h },
		func(h *realtime.Hub) api.LiveServer { return h },
		// Gate responses
		fx.Annotate(
			bus.NewDecisionPublisher,
			fx.As(new(usecase.DecisionPublisher)),
		),
		bus.NewRouter,
	),
	fx.Invoke(runHub),
)

func NewPaymentGateway(cfg config.Config, logger *slog.Logger) *gateway.Stripe {
	return gateway.NewStripe(cfg.Payment, logger)
}

func NewPushSender(cfg config.Config) *notify.Expo {
	return notify.NewExpo(cfg.Notify)
}

func NewSMSSender(cfg config.Config, logger *slog.Logger) usecase.SMSSender {
	return notify.NewSMSSender(cfg.Notify, logger)
}

func NewHub(cfg config.Config, logger *slog.Logger) *realtime.Hub {
	return realtime.NewHub(logger, middleware.OriginChecker(cfg.CORS))
}

func runHub(lc fx.Lifecycle, hub *realtime.Hub) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go hub.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

