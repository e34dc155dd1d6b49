package bootstrap

import (
	"log/slog"

	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(checkConfig),
)

// checkConfig rejects combinations envconfig cannot express and logs the
// settings that shape gate behaviour. Secrets are never logged.
func checkConfig(cfg config.Config, logger *slog.Logger) error {
	switch cfg.Bus.Driver {
	case "mqtt":
	case "awsiot":
		if cfg.AWS.SQSEventQueueURL == "" || cfg.AWS.IoTDataEndpoint == "" {
			return errs.New("BUS_DRIVER=awsiot needs AWS_SQS_EVENT_QUEUE_URL and AWS_IOT_DATA_ENDPOINT")
		}
	default:
		return errs.Newf("unknown BUS_DRIVER %q", cfg.Bus.Driver)
	}
	if cfg.Payment.SecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is empty, card payments will fail")
	}

	logger.Info("configuration loaded",
		slog.String("bus_driver", cfg.Bus.Driver),
		slog.String("topic_prefix", cfg.Bus.TopicPrefix),
		slog.String("garage_timezone", cfg.Garage.Location().String()),
		slog.Duration("entry_permit_ttl", cfg.Garage.EntryPermitTTL),
		slog.Int("worker_max_attempts", cfg.Worker.MaxAttempts),
	)
	return nil
}
