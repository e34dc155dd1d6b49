package worker

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"

	"golang.org/x/sync/errgroup"
)

// Workers runs a pool per queue with the configured concurrency.
type Workers struct {
	pools  []*Pool
	cancel context.CancelFunc
	group  *errgroup.Group
	logger *slog.Logger
}

func New(cfg config.WorkerConfig, queue Queue, handler Handler, metrics usecase.Metrics, logger *slog.Logger) *Workers {
	concurrency := map[job.Queue]int{
		job.QueueGate:      cfg.GateConcurrency,
		job.QueueSlotEvent: cfg.SlotConcurrency,
		job.QueueLifecycle: cfg.LifecycleConcurrency,
		job.QueuePayment:   cfg.PaymentConcurrency,
		job.QueueSystem:    cfg.SystemConcurrency,
	}
	// stay inside the lease so a slow job is not claimed twice
	jobTimeout := cfg.VisibilityTimeout * 9 / 10

	w := &Workers{logger: logger}
	for _, q := range job.Queues() {
		w.pools = append(w.pools, NewPool(PoolConfig{
			Queue:        q,
			Concurrency:  concurrency[q],
			PollInterval: cfg.PollInterval,
			MaxBackoff:   cfg.MaxBackoff,
			JobTimeout:   jobTimeout,
		}, queue, handler, metrics, logger))
	}
	return w
}

func (w *Workers) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(context.WithoutCancel(ctx))
	w.group, ctx = errgroup.WithContext(ctx)
	for _, p := range w.pools {
		w.group.Go(func() error { return p.Run(ctx) })
	}
	w.logger.Info("workers started", slog.Int("pools", len(w.pools)))
}

// Stop cancels polling and waits for running jobs.
func (w *Workers) Stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	return w.group.Wait()
}
