// Package jobqueue is the durable delayed-job queue on PostgreSQL. Jobs are
// claimed with SELECT ... FOR UPDATE SKIP LOCKED and leased by pushing
// visible_after forward; a worker that dies simply lets the lease expire.
package jobqueue

import (
	"context"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/infra/repository"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	baseBackoff = 10 * time.Second
	maxBackoff  = time.Hour
)

type Stat struct {
	Queue job.Queue
	State job.State
	Count int64
	Due   int64
}

// Writer schedules, cancels and edits pending jobs on one connection or
// transaction. Jobs written through a transaction become visible on commit.
type Writer struct {
	db     repository.DBTX
	logger *slog.Logger
}

func NewWriter(db repository.DBTX, logger *slog.Logger) *Writer {
	return &Writer{db: db, logger: logger}
}

type Queue struct {
	*Writer
	pool        *pgxpool.Pool
	visibility  time.Duration
	maxAttempts int
	logger      *slog.Logger
}

func New(pool *pgxpool.Pool, cfg config.WorkerConfig, logger *slog.Logger) *Queue {
	visibility := cfg.VisibilityTimeout
	if visibility <= 0 {
		visibility = 5 * time.Minute
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Queue{
		Writer:      NewWriter(pool, logger),
		pool:        pool,
		visibility:  visibility,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (w *Writer) Schedule(ctx context.Context, queue job.Queue, kind job.Kind, payload any, opts job.Options) (job.ID, error) {
	want, err := kind.Queue()
	if err != nil {
		return job.ID{}, err
	}
	if want != queue {
		return job.ID{}, errs.Newf("job kind %s does not run on %s", kind, queue)
	}
	body, err := job.Encode(payload)
	if err != nil {
		return job.ID{}, err
	}
	priority := opts.Priority
	if priority == 0 {
		priority = job.PriorityDefault
	}
	delay := opts.Delay
	if delay < 0 {
		delay = 0
	}

	id := uuid.New()
	const stmt = `INSERT INTO jobs (id, queue, kind, payload, priority, run_at, visible_after)
		VALUES ($1, $2, $3, $4, $5, NOW() + ($6 * INTERVAL '1 millisecond'), NOW() + ($6 * INTERVAL '1 millisecond'))`
	if _, err := w.db.Exec(ctx, stmt, id, string(queue), string(kind), []byte(body), priority, delay.Milliseconds()); err != nil {
		return job.ID{}, infra.WrapRepoErr(w.logger, infra.KindDBFailure, "failed to schedule job", err)
	}
	w.logger.DebugContext(ctx, "job scheduled",
		slog.String("job_id", id.String()),
		slog.String("queue", string(queue)),
		slog.String("kind", string(kind)),
		slog.Duration("delay", delay))
	return id, nil
}

func (w *Writer) Cancel(ctx context.Context, id job.ID) error {
	if _, err := w.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND state = 'pending'`, id); err != nil {
		return infra.WrapRepoErr(w.logger, infra.KindDBFailure, "failed to cancel job", err)
	}
	return nil
}

func (w *Writer) UpdatePayload(ctx context.Context, id job.ID, payload any) error {
	body, err := job.Encode(payload)
	if err != nil {
		return err
	}
	if _, err := w.db.Exec(ctx, `UPDATE jobs SET payload = $2 WHERE id = $1 AND state = 'pending'`, id, []byte(body)); err != nil {
		return infra.WrapRepoErr(w.logger, infra.KindDBFailure, "failed to update job payload", err)
	}
	return nil
}

// Dequeue claims up to limit due jobs of one queue and leases them for the
// visibility timeout. It returns nil when nothing is due.
func (q *Queue) Dequeue(ctx context.Context, queue job.Queue, limit int) ([]job.Job, error) {
	if limit <= 0 {
		limit = 1
	}

	tx, err := q.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to begin dequeue", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, queue, kind, payload, priority, run_at, attempts, state, last_error, created_at
		FROM jobs
		WHERE queue = $1 AND state = 'pending' AND visible_after <= NOW()
		ORDER BY priority ASC, run_at ASC, created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $2`, string(queue), limit)
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "dequeue query failed", err)
	}
	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "dequeue scan failed", err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
		jobs[i].Attempts++
	}
	_, err = tx.Exec(ctx, `
		UPDATE jobs
		SET visible_after = NOW() + ($1 * INTERVAL '1 millisecond'), attempts = attempts + 1
		WHERE id = ANY($2)`, q.visibility.Milliseconds(), ids)
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to lease jobs", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to commit dequeue", err)
	}
	return jobs, nil
}

// Complete removes a finished job.
func (q *Queue) Complete(ctx context.Context, id job.ID) error {
	if _, err := q.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id); err != nil {
		return infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to complete job", err)
	}
	return nil
}

// Fail schedules a retry with exponential backoff, or parks the job as dead
// once it used up its attempts. dead reports which of the two happened.
func (q *Queue) Fail(ctx context.Context, j job.Job, cause error) (dead bool, err error) {
	msg := cause.Error()
	if j.Attempts >= q.maxAttempts {
		_, err = q.pool.Exec(ctx, `UPDATE jobs SET state = 'dead', last_error = $2 WHERE id = $1`, j.ID, msg)
		if err != nil {
			return false, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to park dead job", err)
		}
		return true, nil
	}

	_, err = q.pool.Exec(ctx, `
		UPDATE jobs
		SET visible_after = NOW() + ($2 * INTERVAL '1 millisecond'), last_error = $3
		WHERE id = $1`, j.ID, Backoff(j.Attempts).Milliseconds(), msg)
	if err != nil {
		return false, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to reschedule job", err)
	}
	return false, nil
}

// Backoff is 10s doubled per attempt, capped at an hour.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 12 {
		return maxBackoff
	}
	d := baseBackoff << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// Stats counts jobs per queue and state; Due counts the ones already runnable.
func (q *Queue) Stats(ctx context.Context) ([]Stat, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT queue, state, COUNT(*), COUNT(*) FILTER (WHERE visible_after <= NOW())
		FROM jobs
		GROUP BY queue, state
		ORDER BY queue, state`)
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to read queue stats", err)
	}
	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Stat, error) {
		var (
			s            Stat
			queue, state string
		)
		err := row.Scan(&queue, &state, &s.Count, &s.Due)
		s.Queue, s.State = job.Queue(queue), job.State(state)
		return s, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to scan queue stats", err)
	}
	return stats, nil
}

// ListDead returns parked jobs, newest first.
func (q *Queue) ListDead(ctx context.Context, limit int) ([]job.Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := q.pool.Query(ctx, `
		SELECT id, queue, kind, payload, priority, run_at, attempts, state, last_error, created_at
		FROM jobs WHERE state = 'dead'
		ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to list dead jobs", err)
	}
	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to scan dead jobs", err)
	}
	return jobs, nil
}

func scanJob(row pgx.CollectableRow) (job.Job, error) {
	var (
		j                  job.Job
		queue, kind, state string
		payload            []byte
	)
	err := row.Scan(&j.ID, &queue, &kind, &payload, &j.Priority, &j.RunAt, &j.Attempts, &state, &j.LastError, &j.CreatedAt)
	j.Queue, j.Kind, j.State, j.Payload = job.Queue(queue), job.Kind(kind), job.State(state), payload
	return j, err
}

// Pending counts pending jobs per queue, due or not.
func (q *Queue) Pending(ctx context.Context) (map[job.Queue]int64, error) {
	stats, err := q.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[job.Queue]int64, len(stats))
	for _, s := range stats {
		if s.State == job.StatePending {
			out[s.Queue] += s.Count
		}
	}
	return out, nil
}

// Bury parks a job as dead without further attempts. Used for jobs that can
// never succeed, such as an undecodable payload.
func (q *Queue) Bury(ctx context.Context, id job.ID, cause error) error {
	if _, err := q.pool.Exec(ctx, `UPDATE jobs SET state = 'dead', last_error = $2 WHERE id = $1`, id, cause.Error()); err != nil {
		return infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to bury job", err)
	}
	return nil
}

// Retry moves a dead job back to pending, runnable now.
func (q *Queue) Retry(ctx context.Context, id job.ID) error {
	tag, err := q.pool.Exec(ctx, `
		UPDATE jobs SET state = 'pending', attempts = 0, visible_after = NOW(), last_error = NULL
		WHERE id = $1 AND state = 'dead'`, id)
	if err != nil {
		return infra.WrapRepoErr(q.logger, infra.KindDBFailure, "failed to retry job", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(q.logger, infra.KindNotFound, "dead job not found", nil)
	}
	return nil
}
