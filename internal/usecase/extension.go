package usecase

import (
	"context"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

type ExtensionUseCase interface {
	Extend(ctx context.Context, userID, sessionID uuid.UUID, minutes int) (*session.Session, error)
}

type extensionUseCaseImpl struct {
	uow       shared.UnitOfWork
	scheduler Scheduler
	clock     clock.Clock
	garage    config.GarageConfig
	logger    *slog.Logger
}

func NewExtensionUseCase(uow shared.UnitOfWork, scheduler Scheduler, clk clock.Clock, garage config.GarageConfig, logger *slog.Logger) ExtensionUseCase {
	return &extensionUseCaseImpl{
		uow:       uow,
		scheduler: scheduler,
		clock:     clk,
		garage:    garage,
		logger:    logger,
	}
}

// Extend moves the expected exit of the caller's active session and replaces
// its pending expiry job. An open overtime window is closed at now.
func (u *extensionUseCaseImpl) Extend(ctx context.Context, userID, sessionID uuid.UUID, minutes int) (*session.Session, error) {
	now := u.clock.Now()

	var newExit time.Time
	err := u.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, maxExit, err := u.load(ctx, tx, userID, sessionID, now, false)
		if err != nil {
			return err
		}
		newExit, err = s.Extend(minutes, maxExit, now)
		return err
	})
	if err != nil {
		return nil, u.mapErr(err)
	}

	payload := job.Lifecycle{SessionID: &sessionID}
	newJobID, err := u.scheduler.Schedule(ctx, job.QueueLifecycle, job.KindCheckSessionExpiry, payload,
		job.Options{Delay: newExit.Sub(now)})
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "schedule extended expiry"), ErrSchedulingFailed)
	}

	var (
		extended *session.Session
		oldJobs  []job.ID
	)
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, maxExit, err := u.load(ctx, tx, userID, sessionID, now, true)
		if err != nil {
			return err
		}
		if _, err := s.Extend(minutes, maxExit, now); err != nil {
			return err
		}
		oldJobs = jobIDs(s.ExitCheckJobID)
		s.ExitCheckJobID = &newJobID
		if err := tx.Sessions().Update(ctx, s); err != nil {
			return err
		}
		extended = s
		return nil
	})
	if err != nil {
		cancelJobs(ctx, u.scheduler, u.logger, newJobID)
		return nil, u.mapErr(err)
	}

	cancelJobs(ctx, u.scheduler, u.logger, oldJobs...)
	u.logger.InfoContext(ctx, "session extended",
		slog.String("session_id", sessionID.String()),
		slog.Int("minutes", minutes),
		slog.Time("expected_exit_time", extended.ExpectedExitTime))
	return extended, nil
}

func (u *extensionUseCaseImpl) load(ctx context.Context, tx shared.Tx, userID, sessionID uuid.UUID, now time.Time, lock bool) (*session.Session, time.Time, error) {
	find := tx.Sessions().FindByID
	if lock {
		find = tx.Sessions().FindByIDForUpdate
	}
	s, err := find(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if s.UserID != userID {
		return nil, time.Time{}, session.ErrNotSessionOwner
	}
	if !s.IsActive() {
		return nil, time.Time{}, session.ErrNotActive
	}
	next, err := optional(tx.Reservations().NextConfirmedOnSlot(ctx, s.SlotID, now))
	if err != nil {
		return nil, time.Time{}, err
	}
	var nextStart *time.Time
	if next != nil {
		nextStart = &next.Window.Start
	}
	maxExit := session.MaxExtensionTime(now, nextStart, u.garage.EarlyEntryGrace, u.garage.ExitGrace, u.garage.MaxExtension)
	return s, maxExit, nil
}

func (u *extensionUseCaseImpl) mapErr(err error) error {
	switch {
	case infra.IsNotFound(err):
		return errs.Mark(err, errs.ErrSessionNotFound)
	case errs.Is(err, session.ErrNotActive):
		return errs.Mark(err, errs.ErrSessionNotActive)
	default:
		return err
	}
}
