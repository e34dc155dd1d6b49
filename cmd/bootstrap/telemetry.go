package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"garage-orchestrator/internal/infra/telemetry"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"

	"go.uber.org/fx"
)

var TelemetryModule = fx.Module("telemetry",
	fx.Provide(
		telemetry.NewMetrics,
		func(m *telemetry.Metrics) usecase.Metrics { return m },
		fx.Annotate(
			func(m *telemetry.Metrics) http.Handler { return m.Handler() },
			fx.ResultTags(`name:"metrics"`),
		),
	),
	fx.Invoke(startTracing),
)

func startTracing(lc fx.Lifecycle, cfg config.Config, metrics *telemetry.Metrics, logger *slog.Logger) {
	var shutdown func(context.Context) error
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = telemetry.InitTracing(ctx, cfg.Telemetry)
			if err != nil {
				return err
			}
			if cfg.Telemetry.ExporterTarget != "" {
				logger.Info("tracing enabled", slog.String("endpoint", cfg.Telemetry.ExporterTarget))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := metrics.Shutdown(ctx); err != nil {
				logger.Warn("metrics shutdown failed", slog.String("error", err.Error()))
			}
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}
