package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/infra/repository"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUoW{
		pool:   pool,
		logger: logger,
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, newPgTx(u.pool, u.logger))
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, newPgTx(pgxTx, u.logger))
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, newPgTx(pgxTx, u.logger)); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

// pgTx hands out repositories bound to one connection or transaction.
type pgTx struct {
	db     repository.DBTX
	logger *slog.Logger

	sessions     shared.SessionRepository
	reservations shared.ReservationRepository
	payments     shared.PaymentRepository
	vehicles     shared.VehicleRepository
	users        shared.UserRepository
	ledgerSlots  shared.LedgerSlotRepository
	alerts       shared.AlertRepository
	devices      shared.DeviceRepository
	jobs         shared.JobRepository
}

func newPgTx(db repository.DBTX, logger *slog.Logger) *pgTx {
	return &pgTx{db: db, logger: logger}
}

func (t *pgTx) Sessions() shared.SessionRepository {
	if t.sessions == nil {
		t.sessions = repository.NewSessionRepository(t.db)
	}
	return t.sessions
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservations == nil {
		t.reservations = repository.NewReservationRepository(t.db)
	}
	return t.reservations
}

func (t *pgTx) Payments() shared.PaymentRepository {
	if t.payments == nil {
		t.payments = repository.NewPaymentRepository(t.db)
	}
	return t.payments
}

func (t *pgTx) Vehicles() shared.VehicleRepository {
	if t.vehicles == nil {
		t.vehicles = repository.NewVehicleRepository(t.db)
	}
	return t.vehicles
}

func (t *pgTx) Users() shared.UserRepository {
	if t.users == nil {
		t.users = repository.NewUserRepository(t.db)
	}
	return t.users
}

func (t *pgTx) LedgerSlots() shared.LedgerSlotRepository {
	if t.ledgerSlots == nil {
		t.ledgerSlots = repository.NewLedgerSlotRepository(t.db)
	}
	return t.ledgerSlots
}

func (t *pgTx) Alerts() shared.AlertRepository {
	if t.alerts == nil {
		t.alerts = repository.NewAlertRepository(t.db)
	}
	return t.alerts
}

func (t *pgTx) Devices() shared.DeviceRepository {
	if t.devices == nil {
		t.devices = repository.NewDeviceRepository(t.db)
	}
	return t.devices
}

func (t *pgTx) Jobs() shared.JobRepository {
	if t.jobs == nil {
		t.jobs = jobqueue.NewWriter(t.db, t.logger)
	}
	return t.jobs
}
