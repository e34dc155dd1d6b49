package components

import (
	"log/slog"

	"garage-orchestrator/internal/handler/api"
	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/infra/realtime"
	"garage-orchestrator/internal/infra/redisstore"
	"garage-orchestrator/internal/infra/uow"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	ledgerModule,
	liveStoreModule,
	jobQueueModule,
)

var ledgerModule = fx.Module("persistence/ledger",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

var liveStoreModule = fx.Module("persistence/live",
	fx.Provide(
		NewSlotStore,
		fx.Annotate(
			NewPermitStore,
			fx.As(new(usecase.PermitStore)),
		),
	),
)

var jobQueueModule = fx.Module("persistence/jobqueue",
	fx.Provide(
		NewJobQueue,
		func(q *jobqueue.Queue) usecase.Scheduler { return q },
		func(q *jobqueue.Queue) worker.Queue { return q },
		func(q *jobqueue.Queue) api.JobReporter { return q },
	),
)

// NewSlotStore publishes every applied slot write to the live dashboard.
func NewSlotStore(client *redis.Client, cfg config.Config, hub *realtime.Hub, logger *slog.Logger) usecase.SlotStore {
	return realtime.NewSlotFeed(redisstore.NewSlotStore(client, cfg.Redis, logger), hub)
}

func NewPermitStore(client *redis.Client, cfg config.Config, logger *slog.Logger) *redisstore.PermitStore {
	return redisstore.NewPermitStore(client, cfg.Redis, logger)
}

func NewJobQueue(pool *pgxpool.Pool, cfg config.Config, logger *slog.Logger) *jobqueue.Queue {
	return jobqueue.New(pool, cfg.Worker, logger)
}
