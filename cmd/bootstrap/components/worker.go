package components

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/infra/bus"
	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/infra/telemetry"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		fx.Annotate(
			worker.NewDispatcher,
			fx.As(new(worker.Handler)),
		),
		NewWorkers,
	),
	fx.Invoke(
		startWorkers,
		startSubscriber,
		observeQueues,
	),
)

func NewWorkers(cfg config.Config, queue worker.Queue, handler worker.Handler, metrics usecase.Metrics, logger *slog.Logger) *worker.Workers {
	return worker.New(cfg.Worker, queue, handler, metrics, logger)
}

func startWorkers(lc fx.Lifecycle, workers *worker.Workers) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			workers.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			return workers.Stop()
		},
	})
}

// startSubscriber feeds device messages into the job queue. It starts after
// the workers so nothing is queued without a consumer.
func startSubscriber(lc fx.Lifecycle, sub bus.Subscriber, router *bus.Router, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := sub.Start(ctx, router.Handle); err != nil {
				return err
			}
			logger.Info("device bus subscribed")
			return nil
		},
		OnStop: func(context.Context) error {
			sub.Stop()
			return nil
		},
	})
}

func observeQueues(metrics *telemetry.Metrics, queue *jobqueue.Queue) error {
	return metrics.ObserveQueueDepth(queue.Pending)
}
