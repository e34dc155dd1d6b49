package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/domain/vehicle"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

type OccupancyUseCase interface {
	// HandleSlotEvent reconciles one camera observation against the live slot.
	// Only transient store or ledger failures are returned.
	HandleSlotEvent(ctx context.Context, ev job.SlotEvent) error
}

type occupancyUseCaseImpl struct {
	uow       shared.UnitOfWork
	slots     SlotStore
	scheduler Scheduler
	allocator *Allocator
	closer    *SessionCloser
	alerts    *AlertService
	notifier  *Notifier
	clock     clock.Clock
	garage    config.GarageConfig
	logger    *slog.Logger
}

func NewOccupancyUseCase(
	uow shared.UnitOfWork,
	slots SlotStore,
	scheduler Scheduler,
	allocator *Allocator,
	closer *SessionCloser,
	alerts *AlertService,
	notifier *Notifier,
	clk clock.Clock,
	garage config.GarageConfig,
	logger *slog.Logger,
) OccupancyUseCase {
	return &occupancyUseCaseImpl{
		uow:       uow,
		slots:     slots,
		scheduler: scheduler,
		allocator: allocator,
		closer:    closer,
		alerts:    alerts,
		notifier:  notifier,
		clock:     clk,
		garage:    garage,
		logger:    logger,
	}
}

func (u *occupancyUseCaseImpl) HandleSlotEvent(ctx context.Context, ev job.SlotEvent) error {
	at := ev.Timestamp
	if at.IsZero() {
		at = u.clock.Now()
	}
	log := u.logger.With(slog.String("slot_id", ev.SlotID), slog.String("event_type", string(ev.EventType)))

	live, err := u.slots.Get(ctx, ev.SlotID)
	if err != nil {
		if infra.IsNotFound(err) {
			log.ErrorContext(ctx, "slot event for unknown slot")
			return nil
		}
		return err
	}

	switch ev.EventType {
	case job.SlotEventOccupied:
		plate := ""
		if ev.PlateNumber != nil {
			plate = normalizePlate(*ev.PlateNumber)
		}
		return u.handleArrival(ctx, log, live, plate, at)
	case job.SlotEventAvailable:
		return u.handleDeparture(ctx, log, live, at)
	default:
		log.WarnContext(ctx, "unknown slot event type")
		return nil
	}
}

func (u *occupancyUseCaseImpl) handleArrival(ctx context.Context, log *slog.Logger, live *slot.Slot, plate string, at time.Time) error {
	if plate == "" {
		return u.arrivalWithoutPlate(ctx, log, live, at)
	}
	log = log.With(slog.String("plate", plate))

	switch live.Status {
	case slot.StatusAssigned:
		if live.ExpectedPlate() == plate {
			return u.confirmArrival(ctx, log, live, at)
		}
		return u.resolveConflict(ctx, log, live, plate, at)

	case slot.StatusAvailable:
		applied, err := u.slots.Update(ctx, live.ID, []slot.Status{slot.StatusAvailable}, func(s *slot.Slot) {
			s.OccupyUnauthorized(plate, at)
		})
		if err != nil || !applied {
			return err
		}
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeSlotConflict, alert.SeverityHigh,
			"Unauthorized parking",
			fmt.Sprintf("Vehicle %s parked in unassigned slot %s.", plate, live.ID),
			at, alert.WithSlot(live.ID), alert.WithPlate(plate)))
		return nil

	case slot.StatusOccupied:
		if live.ExpectedPlate() == plate {
			log.DebugContext(ctx, "duplicate occupancy event ignored")
			return nil
		}
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeSlotConflict, alert.SeverityHigh,
			"Occupied slot reports another vehicle",
			fmt.Sprintf("Slot %s is occupied by %s but the camera detected %s.", live.ID, live.ExpectedPlate(), plate),
			at, alert.WithSlot(live.ID), alert.WithPlate(plate),
			alert.WithDetail("occupant_plate", live.ExpectedPlate()),
			alert.WithDetail("detected_plate", plate)))
		return nil

	case slot.StatusConflict:
		log.DebugContext(ctx, "slot already in conflict, event ignored")
		return nil

	case slot.StatusMaintenance, slot.StatusDisabled:
		u.raiseClosedSlotViolation(ctx, live, plate, at)
		return nil
	}
	return nil
}

func (u *occupancyUseCaseImpl) arrivalWithoutPlate(ctx context.Context, log *slog.Logger, live *slot.Slot, at time.Time) error {
	switch live.Status {
	case slot.StatusMaintenance, slot.StatusDisabled:
		u.raiseClosedSlotViolation(ctx, live, "", at)
		return nil
	case slot.StatusConflict:
		log.DebugContext(ctx, "slot already in conflict, event ignored")
		return nil
	}

	applied, err := u.slots.Update(ctx, live.ID, []slot.Status{live.Status}, func(s *slot.Slot) {
		s.OccupyUnknown()
	})
	if err != nil || !applied {
		return err
	}
	_ = u.alerts.Raise(ctx, alert.New(alert.TypeCameraOffline, alert.SeverityLow,
		"Plate not recognized",
		fmt.Sprintf("A vehicle occupied slot %s but no plate was detected.", live.ID),
		at, alert.WithSlot(live.ID),
		alert.WithDetail("previous_status", string(live.Status))))
	return nil
}

func (u *occupancyUseCaseImpl) raiseClosedSlotViolation(ctx context.Context, live *slot.Slot, plate string, at time.Time) {
	_ = u.alerts.Raise(ctx, alert.New(alert.TypeViolation, alert.SeverityCritical,
		"Vehicle in closed slot",
		fmt.Sprintf("A vehicle parked in slot %s which is %s.", live.ID, live.Status),
		at, alert.WithSlot(live.ID), alert.WithPlate(plate),
		alert.WithDetail("slot_status", string(live.Status))))
}

func (u *occupancyUseCaseImpl) confirmArrival(ctx context.Context, log *slog.Logger, live *slot.Slot, at time.Time) error {
	applied, err := u.slots.Update(ctx, live.ID, []slot.Status{slot.StatusAssigned}, func(s *slot.Slot) {
		s.Occupy(at)
	})
	if err != nil {
		return err
	}
	if !applied {
		log.InfoContext(ctx, "slot changed before arrival was recorded")
		return nil
	}

	var sess *session.Session
	err = u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		sess, err = optional(tx.Sessions().FindActiveBySlot(ctx, live.ID))
		return err
	})
	if err != nil {
		// the occupancy check finds the slot OCCUPIED and does nothing
		log.WarnContext(ctx, "arrival recorded but session lookup failed", slog.String("error", err.Error()))
		return nil
	}
	if sess != nil {
		cancelJobs(ctx, u.scheduler, log, jobIDs(sess.OccupancyCheckJobID)...)
	}
	log.InfoContext(ctx, "vehicle arrived at assigned slot")
	return nil
}

func (u *occupancyUseCaseImpl) resolveConflict(ctx context.Context, log *slog.Logger, live *slot.Slot, plate string, at time.Time) error {
	expected := live.ExpectedPlate()
	expectedSessionID := live.SessionID()

	applied, err := u.slots.Update(ctx, live.ID, []slot.Status{slot.StatusAssigned}, func(s *slot.Slot) {
		s.MarkConflict(plate, at)
	})
	if err != nil {
		return err
	}
	if !applied {
		log.InfoContext(ctx, "slot changed before conflict was recorded")
		return nil
	}

	opts := []alert.Option{
		alert.WithSlot(live.ID),
		alert.WithPlate(plate),
		alert.WithDetail("expected_plate", expected),
		alert.WithDetail("detected_plate", plate),
	}
	if expectedSessionID != nil {
		opts = append(opts, alert.WithDetail("session_id", expectedSessionID.String()))
	}
	_ = u.alerts.Raise(ctx, alert.New(alert.TypeSlotConflict, alert.SeverityHigh,
		"Slot conflict",
		fmt.Sprintf("Vehicle %s parked in slot %s which was assigned to %s.", plate, live.ID, expected),
		at, opts...))

	u.freeViolatorSlot(ctx, log, live.ID, plate)

	victim, err := u.findVictim(ctx, live.ID, expectedSessionID, expected)
	if err != nil {
		log.ErrorContext(ctx, "failed to load displaced session", slog.String("error", err.Error()))
	}
	if victim == nil {
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeDataIntegrity, alert.SeverityCritical,
			"Displaced session not found",
			fmt.Sprintf("Slot %s was assigned to %s but no active session matches it.", live.ID, expected),
			at, alert.WithSlot(live.ID), alert.WithPlate(expected)))
		return nil
	}

	u.relocateVictim(ctx, log.With(slog.String("session_id", victim.ID.String())), live.ID, victim, expected, at)
	return nil
}

// freeViolatorSlot releases the slot the violating vehicle was assigned, if it
// never arrived there, and flags its session for the conflict fee.
func (u *occupancyUseCaseImpl) freeViolatorSlot(ctx context.Context, log *slog.Logger, conflictSlotID, plate string) {
	var own *session.Session
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		v, err := optional(tx.Vehicles().FindByPlate(ctx, plate))
		if err != nil || v == nil {
			return err
		}
		s, err := optional(tx.Sessions().FindActiveByVehicle(ctx, v.ID))
		if err != nil || s == nil || s.SlotID == conflictSlotID {
			return err
		}
		s.InvolvedInConflict = true
		if err := tx.Sessions().Update(ctx, s); err != nil {
			return err
		}
		own = s
		return nil
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to flag violator session", slog.String("error", err.Error()))
		return
	}
	if own == nil {
		return
	}

	applied, err := u.slots.Update(ctx, own.SlotID, []slot.Status{slot.StatusAssigned}, func(s *slot.Slot) {
		if s.ExpectedPlate() == plate {
			s.Release()
		}
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to release violator slot",
			slog.String("violator_slot_id", own.SlotID), slog.String("error", err.Error()))
		return
	}
	if applied {
		log.InfoContext(ctx, "violator slot released", slog.String("violator_slot_id", own.SlotID))
	}
}

func (u *occupancyUseCaseImpl) findVictim(ctx context.Context, slotID string, sessionID *uuid.UUID, expectedPlate string) (*session.Session, error) {
	var victim *session.Session
	err := u.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var (
			s   *session.Session
			err error
		)
		if sessionID != nil {
			s, err = optional(tx.Sessions().FindByID(ctx, *sessionID))
		}
		if err == nil && (s == nil || !s.IsActive()) {
			s, err = optional(tx.Sessions().FindActiveBySlot(ctx, slotID))
		}
		if err != nil || s == nil || !s.IsActive() {
			return err
		}
		v, err := optional(tx.Vehicles().FindByID(ctx, s.VehicleID))
		if err != nil || v == nil || v.Plate != expectedPlate {
			return err
		}
		victim = s
		return nil
	})
	return victim, err
}

func (u *occupancyUseCaseImpl) relocateVictim(ctx context.Context, log *slog.Logger, fromSlotID string, victim *session.Session, plate string, at time.Time) {
	cancelJobs(ctx, u.scheduler, log, jobIDs(victim.OccupancyCheckJobID)...)

	target, emergency := u.claimRelocationTarget(ctx, log, plate)
	if target == nil {
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeSlotConflict, alert.SeverityCritical,
			"No slot for displaced vehicle",
			fmt.Sprintf("Vehicle %s lost slot %s and no slot is available. Manual intervention required.", plate, fromSlotID),
			at, alert.WithSlot(fromSlotID), alert.WithPlate(plate),
			alert.WithDetail("session_id", victim.ID.String())))
		return
	}

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, victim.ID)
		if err != nil {
			return err
		}
		s.SlotID = target.ID
		s.OccupancyCheckJobID = nil
		// emergency placements get no occupancy re-check
		if !emergency {
			id, err := tx.Jobs().Schedule(ctx, job.QueueLifecycle, job.KindCheckOccupancy,
				job.Lifecycle{SessionID: &s.ID, VehicleID: &s.VehicleID, SlotID: target.ID},
				job.Options{Delay: u.garage.OccupancyCheckDelay})
			if err != nil {
				return err
			}
			s.OccupancyCheckJobID = &id
		}
		victim = s
		return tx.Sessions().Update(ctx, s)
	})
	if err != nil {
		u.allocator.Release(ctx, target.ID, plate)
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeSystemFailure, alert.SeverityCritical,
			"Relocation failed",
			fmt.Sprintf("Vehicle %s could not be moved from slot %s to %s.", plate, fromSlotID, target.ID),
			at, alert.WithSlot(fromSlotID), alert.WithPlate(plate),
			alert.WithDetail("session_id", victim.ID.String()),
			alert.WithDetail("error", err.Error())))
		return
	}
	u.allocator.Bind(ctx, target.ID, plate, victim.ID)

	log.InfoContext(ctx, "displaced vehicle relocated",
		slog.String("target_slot_id", target.ID), slog.Bool("emergency", emergency))
	u.notifier.PushUser(ctx, victim.UserID, "Your Parking Slot has changed",
		fmt.Sprintf("Slot %s is taken. Please park in slot %s instead.", fromSlotID, target.ID),
		map[string]string{"session_id": victim.ID.String(), "slot_id": target.ID})
}

// claimRelocationTarget claims a safe alternative, or an emergency slot when
// none is left, retrying when a concurrent entry wins the candidate.
func (u *occupancyUseCaseImpl) claimRelocationTarget(ctx context.Context, log *slog.Logger, plate string) (target *slot.Slot, emergency bool) {
	for range maxClaimAttempts {
		target, emergency = u.pickRelocationTarget(ctx, log)
		if target == nil {
			return nil, false
		}
		claimed, err := u.allocator.Claim(ctx, target.ID, plate)
		if err != nil {
			log.ErrorContext(ctx, "failed to claim relocation slot",
				slog.String("target_slot_id", target.ID), slog.String("error", err.Error()))
			return nil, false
		}
		if claimed {
			return target, emergency
		}
	}
	return nil, false
}

func (u *occupancyUseCaseImpl) pickRelocationTarget(ctx context.Context, log *slog.Logger) (target *slot.Slot, emergency bool) {
	alt, err := u.allocator.FindSafeAlternative(ctx)
	if err != nil {
		log.ErrorContext(ctx, "safe alternative search failed", slog.String("error", err.Error()))
	}
	if alt != nil {
		return alt, false
	}
	em, err := u.allocator.FindEmergency(ctx)
	if err != nil {
		log.ErrorContext(ctx, "emergency slot search failed", slog.String("error", err.Error()))
	}
	if em != nil {
		return em, true
	}
	return nil, false
}

func (u *occupancyUseCaseImpl) handleDeparture(ctx context.Context, log *slog.Logger, live *slot.Slot, at time.Time) error {
	if live.Status == slot.StatusAvailable {
		return nil
	}

	var (
		sess    *session.Session
		unknown bool
	)
	err := u.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		switch live.Status {
		case slot.StatusConflict:
			var v *vehicle.Vehicle
			if v, err = optional(tx.Vehicles().FindByPlate(ctx, live.ExpectedPlate())); err != nil {
				return err
			}
			if v == nil {
				unknown = true
				return nil
			}
			sess, err = optional(tx.Sessions().FindActiveByVehicle(ctx, v.ID))
		case slot.StatusOccupied, slot.StatusAssigned:
			sess, err = optional(tx.Sessions().FindActiveBySlot(ctx, live.ID))
		}
		return err
	})
	if err != nil {
		return err
	}

	switch {
	case unknown:
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeSuspiciousActivity, alert.SeverityHigh,
			"Unknown vehicle left conflict slot",
			fmt.Sprintf("Vehicle %s left slot %s but is not registered.", live.ExpectedPlate(), live.ID),
			at, alert.WithSlot(live.ID), alert.WithPlate(live.ExpectedPlate())))
		return u.clearSlot(ctx, log, live, nil)

	case live.Status != slot.StatusConflict && live.Status != slot.StatusOccupied && live.Status != slot.StatusAssigned:
		return u.clearSlot(ctx, log, live, nil)

	case sess == nil:
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeViolation, alert.SeverityHigh,
			"Session Not Found on Exit",
			fmt.Sprintf("A vehicle left slot %s without an active session.", live.ID),
			at, alert.WithSlot(live.ID), alert.WithPlate(live.ExpectedPlate())))
		return u.clearSlot(ctx, log, live, nil)
	}

	completed, _, err := u.closer.Complete(ctx, sess.ID, at)
	if err != nil {
		return err
	}
	return u.clearSlot(ctx, log, live, completed)
}

// clearSlot frees the slot only if nothing else moved it since it was read.
func (u *occupancyUseCaseImpl) clearSlot(ctx context.Context, log *slog.Logger, live *slot.Slot, completed *session.Session) error {
	applied, err := u.slots.Update(ctx, live.ID, []slot.Status{live.Status}, func(s *slot.Slot) {
		if completed != nil {
			s.RecordStay(completed.StayMinutes())
		}
		s.Release()
	})
	if err != nil {
		return err
	}
	if !applied {
		log.InfoContext(ctx, "slot changed before it could be cleared")
		return nil
	}
	log.InfoContext(ctx, "slot cleared", slog.String("previous_status", string(live.Status)))
	return nil
}
