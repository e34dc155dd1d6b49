package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase/shared"
)

// LifecycleUseCase handles the delayed jobs of a session. Each handler re-reads
// the session and its slot and treats a terminal session as done.
type LifecycleUseCase interface {
	CheckOccupancy(ctx context.Context, p job.Lifecycle) error
	CheckSessionExpiry(ctx context.Context, p job.Lifecycle) error
	CheckGracePeriodExpiry(ctx context.Context, p job.Lifecycle) error
}

type lifecycleUseCaseImpl struct {
	uow            shared.UnitOfWork
	slots          SlotStore
	scheduler      Scheduler
	gateway        PaymentGateway
	closer         *SessionCloser
	alerts         *AlertService
	notifier       *Notifier
	clock          clock.Clock
	garage         config.GarageConfig
	gatewayTimeout time.Duration
	logger         *slog.Logger
}

func NewLifecycleUseCase(
	uow shared.UnitOfWork,
	slots SlotStore,
	scheduler Scheduler,
	gateway PaymentGateway,
	closer *SessionCloser,
	alerts *AlertService,
	notifier *Notifier,
	clk clock.Clock,
	garage config.GarageConfig,
	gatewayTimeout time.Duration,
	logger *slog.Logger,
) LifecycleUseCase {
	return &lifecycleUseCaseImpl{
		uow:            uow,
		slots:          slots,
		scheduler:      scheduler,
		gateway:        gateway,
		closer:         closer,
		alerts:         alerts,
		notifier:       notifier,
		clock:          clk,
		garage:         garage,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

func (u *lifecycleUseCaseImpl) CheckOccupancy(ctx context.Context, p job.Lifecycle) error {
	sess, err := u.resolveSession(ctx, p)
	if err != nil || sess == nil || !sess.IsActive() {
		return err
	}
	log := u.logger.With(slog.String("session_id", sess.ID.String()), slog.String("slot_id", sess.SlotID))

	live, err := u.liveSlot(ctx, log, sess.SlotID)
	if err != nil || live == nil {
		return err
	}
	if live.Status != slot.StatusAssigned {
		log.DebugContext(ctx, "vehicle arrived or left, occupancy check done", slog.String("status", string(live.Status)))
		return nil
	}
	if sid := live.SessionID(); sid != nil && *sid != sess.ID {
		log.DebugContext(ctx, "slot assigned to another session, occupancy check done")
		return nil
	}

	now := u.clock.Now()
	var (
		cancelled bool
		exitJob   []job.ID
	)
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, sess.ID)
		if err != nil {
			return err
		}
		if !s.IsActive() {
			return nil
		}
		exitJob = jobIDs(s.ExitCheckJobID)
		s.Cancel(now)
		if err := tx.Sessions().Update(ctx, s); err != nil {
			return err
		}
		if err := tx.Payments().Create(ctx, payment.NewCancelled(s.ID, s.PaymentMethod, s.PaymentIntentID)); err != nil {
			return err
		}
		sess = s
		cancelled = true
		return nil
	})
	if err != nil || !cancelled {
		return err
	}

	_ = u.alerts.Raise(ctx, alert.New(alert.TypeNoShow, alert.SeverityMedium,
		"No-show",
		fmt.Sprintf("The vehicle assigned to slot %s did not arrive. The session was cancelled.", sess.SlotID),
		now, alert.WithSlot(sess.SlotID), alert.WithPlate(live.ExpectedPlate()),
		alert.WithDetail("session_id", sess.ID.String())))

	cancelJobs(ctx, u.scheduler, log, exitJob...)

	applied, err := u.slots.Update(ctx, sess.SlotID, []slot.Status{slot.StatusAssigned}, func(s *slot.Slot) {
		if sid := s.SessionID(); sid == nil || *sid == sess.ID {
			s.Release()
		}
	})
	if err != nil {
		log.ErrorContext(ctx, "no-show slot not released", slog.String("error", err.Error()))
	} else if !applied {
		log.InfoContext(ctx, "slot changed before no-show release")
	}

	if sess.PaymentMethod == payment.MethodCard && sess.PaymentIntentID != nil {
		gctx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
		defer cancel()
		if err := u.gateway.Cancel(gctx, *sess.PaymentIntentID); err != nil {
			log.WarnContext(ctx, "failed to release card hold of no-show", slog.String("error", err.Error()))
		}
	}

	log.InfoContext(ctx, "session cancelled as no-show")
	return nil
}

func (u *lifecycleUseCaseImpl) CheckSessionExpiry(ctx context.Context, p job.Lifecycle) error {
	sess, err := u.resolveSession(ctx, p)
	if err != nil || sess == nil || sess.IsTerminal() {
		return err
	}
	log := u.logger.With(slog.String("session_id", sess.ID.String()), slog.String("slot_id", sess.SlotID))
	now := u.clock.Now()
	if sess.ExpectedExitTime.After(now) {
		log.DebugContext(ctx, "session was extended, expiry check done")
		return nil
	}

	live, err := u.liveSlot(ctx, log, sess.SlotID)
	if err != nil || live == nil {
		return err
	}

	switch live.Status {
	case slot.StatusAvailable:
		// the slot is the truth for availability
		_, closed, err := u.closer.Complete(ctx, sess.ID, now)
		if err != nil {
			return err
		}
		if closed {
			log.WarnContext(ctx, "expired session forced to completion, slot was already free")
		}
		return nil

	case slot.StatusOccupied:
		graceID, err := u.scheduler.Schedule(ctx, job.QueueLifecycle, job.KindCheckGracePeriodEnded,
			job.Lifecycle{SessionID: &sess.ID, VehicleID: &sess.VehicleID, SlotID: sess.SlotID},
			job.Options{Delay: u.garage.ExitGrace})
		if err != nil {
			return err
		}
		err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			s, err := tx.Sessions().FindByIDForUpdate(ctx, sess.ID)
			if err != nil || !s.IsActive() {
				return err
			}
			s.ExitCheckJobID = &graceID
			return tx.Sessions().Update(ctx, s)
		})
		if err != nil {
			log.WarnContext(ctx, "grace job not recorded on session", slog.String("error", err.Error()))
		}
		u.notifier.PushUser(ctx, sess.UserID, "Your session ended!",
			fmt.Sprintf("Please leave slot %s within %d minutes or extend your session to avoid penalty charges.",
				sess.SlotID, int(u.garage.ExitGrace.Minutes())),
			map[string]string{"session_id": sess.ID.String()})
		log.InfoContext(ctx, "session expired with vehicle still parked, grace period started")
		return nil

	default:
		log.DebugContext(ctx, "expiry check ignored", slog.String("status", string(live.Status)))
		return nil
	}
}

func (u *lifecycleUseCaseImpl) CheckGracePeriodExpiry(ctx context.Context, p job.Lifecycle) error {
	sess, err := u.resolveSession(ctx, p)
	if err != nil || sess == nil || sess.IsTerminal() {
		return err
	}
	log := u.logger.With(slog.String("session_id", sess.ID.String()), slog.String("slot_id", sess.SlotID))
	now := u.clock.Now()
	if sess.ExpectedExitTime.After(now) {
		log.DebugContext(ctx, "session was extended, grace check done")
		return nil
	}

	live, err := u.liveSlot(ctx, log, sess.SlotID)
	if err != nil || live == nil {
		return err
	}
	if live.Status != slot.StatusOccupied {
		_, closed, err := u.closer.Complete(ctx, sess.ID, now)
		if err != nil {
			return err
		}
		if closed {
			log.WarnContext(ctx, "session forced to completion after grace, slot no longer occupied")
		}
		return nil
	}

	var started bool
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, sess.ID)
		if err != nil || !s.IsActive() {
			return err
		}
		if started = s.StartOvertime(now); !started {
			return nil
		}
		s.ExitCheckJobID = nil
		return tx.Sessions().Update(ctx, s)
	})
	if err != nil || !started {
		return err
	}

	_ = u.alerts.Raise(ctx, alert.New(alert.TypeOvertime, alert.SeverityMedium,
		"Overtime started",
		fmt.Sprintf("The vehicle in slot %s overstayed its session and grace period.", sess.SlotID),
		now, alert.WithSlot(sess.SlotID), alert.WithPlate(live.ExpectedPlate()),
		alert.WithDetail("session_id", sess.ID.String())))
	u.notifier.PushUser(ctx, sess.UserID, "Penalty Time Started",
		"Your grace period is over. Penalty rates now apply until you leave or extend your session.",
		map[string]string{"session_id": sess.ID.String()})
	log.InfoContext(ctx, "overtime started")
	return nil
}

// resolveSession prefers the session id and falls back to the vehicle's active
// session, then to the reservation, for jobs that fired before the id was attached.
func (u *lifecycleUseCaseImpl) resolveSession(ctx context.Context, p job.Lifecycle) (*session.Session, error) {
	var sess *session.Session
	err := u.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		switch {
		case p.SessionID != nil:
			sess, err = optional(tx.Sessions().FindByID(ctx, *p.SessionID))
		case p.VehicleID != nil:
			sess, err = optional(tx.Sessions().FindActiveByVehicle(ctx, *p.VehicleID))
			if err == nil && sess == nil && p.ReservationID != nil {
				sess, err = optional(tx.Sessions().FindByReservation(ctx, *p.ReservationID))
			}
		case p.ReservationID != nil:
			sess, err = optional(tx.Sessions().FindByReservation(ctx, *p.ReservationID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		u.logger.DebugContext(ctx, "lifecycle job without a session, nothing to do")
	}
	return sess, nil
}

func (u *lifecycleUseCaseImpl) liveSlot(ctx context.Context, log *slog.Logger, id string) (*slot.Slot, error) {
	live, err := u.slots.Get(ctx, id)
	if err != nil {
		if infra.IsNotFound(err) {
			log.ErrorContext(ctx, "session points at an unknown slot")
			return nil, nil
		}
		return nil, err
	}
	return live, nil
}
