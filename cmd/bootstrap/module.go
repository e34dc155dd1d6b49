package bootstrap

import (
	"garage-orchestrator/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	RedisModule,
	BusModule,
	TelemetryModule,
	JWTModule,
	components.PersistenceModule,
	components.IntegrationModule,
	components.UseCaseModule,
	components.HandlerModule,
	components.WorkerModule,
)
