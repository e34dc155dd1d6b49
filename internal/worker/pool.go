package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	OutcomeCompleted = "completed"
	OutcomeRetried   = "retried"
	OutcomeDead      = "dead"
)

// Queue is the worker side of the job queue.
type Queue interface {
	Dequeue(ctx context.Context, queue job.Queue, limit int) ([]job.Job, error)
	Complete(ctx context.Context, id job.ID) error
	Fail(ctx context.Context, j job.Job, cause error) (dead bool, err error)
	Bury(ctx context.Context, id job.ID, cause error) error
}

type Handler interface {
	Handle(ctx context.Context, j job.Job) error
}

type PoolConfig struct {
	Queue        job.Queue
	Concurrency  int
	PollInterval time.Duration
	MaxBackoff   time.Duration
	// JobTimeout bounds one handler run; it should stay below the lease.
	JobTimeout time.Duration
}

// Pool polls one queue and runs up to Concurrency jobs at a time. An empty
// queue doubles the poll interval up to MaxBackoff; finding work resets it.
type Pool struct {
	cfg     PoolConfig
	queue   Queue
	handler Handler
	metrics usecase.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

func NewPool(cfg PoolConfig, queue Queue, handler Handler, metrics usecase.Metrics, logger *slog.Logger) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxBackoff < cfg.PollInterval {
		cfg.MaxBackoff = cfg.PollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	return &Pool{
		cfg:     cfg,
		queue:   queue,
		handler: handler,
		metrics: metrics,
		tracer:  otel.Tracer("garage-orchestrator/worker"),
		logger:  logger.With(slog.String("queue", string(cfg.Queue))),
	}
}

// Run blocks until ctx is cancelled, then waits for in-flight jobs.
func (p *Pool) Run(ctx context.Context) error {
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup

	pollNow := make(chan struct{}, 1)
	triggerPoll := func() {
		select {
		case pollNow <- struct{}{}:
		default:
		}
	}
	backoff := p.cfg.PollInterval
	timer := time.NewTimer(0)
	defer timer.Stop()

	p.logger.Info("worker pool started", slog.Int("concurrency", p.cfg.Concurrency))
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			p.logger.Info("worker pool stopped")
			return nil

		case <-timer.C:
			triggerPoll()
			timer.Reset(backoff)

		case <-pollNow:
			free := p.cfg.Concurrency - len(sem)
			if free <= 0 {
				continue
			}
			jobs, err := p.queue.Dequeue(ctx, p.cfg.Queue, free)
			if err != nil {
				if ctx.Err() == nil {
					p.logger.Error("dequeue failed", slog.String("error", err.Error()))
				}
				continue
			}
			if len(jobs) == 0 {
				backoff = min(backoff*2, p.cfg.MaxBackoff)
				continue
			}
			backoff = p.cfg.PollInterval

			for _, j := range jobs {
				sem <- struct{}{}
				wg.Add(1)
				go func(j job.Job) {
					defer wg.Done()
					defer func() {
						<-sem
						triggerPoll()
					}()
					p.process(ctx, j)
				}(j)
			}
			if len(jobs) == free {
				triggerPoll()
			}
		}
	}
}

// process runs one job detached from the poll context so a shutdown lets it
// finish.
func (p *Pool) process(ctx context.Context, j job.Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.JobTimeout)
	defer cancel()

	ctx, span := p.tracer.Start(ctx, "process_job",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("job.id", j.ID.String()),
			attribute.String("job.queue", string(j.Queue)),
			attribute.String("job.kind", string(j.Kind)),
			attribute.Int("job.attempt", j.Attempts),
		))
	defer span.End()

	log := p.logger.With(
		slog.String("job_id", j.ID.String()),
		slog.String("kind", string(j.Kind)),
		slog.Int("attempt", j.Attempts))

	err := p.runHandler(ctx, j)
	if err == nil {
		if cerr := p.queue.Complete(ctx, j.ID); cerr != nil {
			log.ErrorContext(ctx, "job done but not removed", slog.String("error", cerr.Error()))
		}
		p.metrics.JobProcessed(ctx, j.Queue, j.Kind, OutcomeCompleted)
		log.DebugContext(ctx, "job completed")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errs.Is(err, job.ErrInvalidPayload) || errs.Is(err, job.ErrUnknownKind) {
		if berr := p.queue.Bury(ctx, j.ID, err); berr != nil {
			log.ErrorContext(ctx, "failed to bury job", slog.String("error", berr.Error()))
		}
		p.metrics.JobProcessed(ctx, j.Queue, j.Kind, OutcomeDead)
		log.ErrorContext(ctx, "job cannot run and was buried", slog.String("error", err.Error()))
		return
	}

	dead, ferr := p.queue.Fail(ctx, j, err)
	if ferr != nil {
		// the lease expires and the job runs again
		log.ErrorContext(ctx, "failed to record job failure", slog.String("error", ferr.Error()))
		return
	}
	if dead {
		p.metrics.JobProcessed(ctx, j.Queue, j.Kind, OutcomeDead)
		log.ErrorContext(ctx, "job gave up after its last attempt", slog.String("error", err.Error()))
		return
	}
	p.metrics.JobProcessed(ctx, j.Queue, j.Kind, OutcomeRetried)
	log.WarnContext(ctx, "job failed, will retry", slog.String("error", err.Error()))
}

func (p *Pool) runHandler(ctx context.Context, j job.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return p.handler.Handle(ctx, j)
}

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("job handler panicked: %v", e.value)
}
