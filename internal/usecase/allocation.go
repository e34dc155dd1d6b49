package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/permit"
	"garage-orchestrator/internal/domain/reservation"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSessionStartFailed = errs.New("failed to start parking session")
	ErrSchedulingFailed   = errs.New("failed to schedule lifecycle job")
	ErrSlotTaken          = errs.New("slot was claimed by another entry")
)

// maxClaimAttempts bounds how many alternative slots one entry tries when
// concurrent entries keep winning the race for them.
const maxClaimAttempts = 3

// Allocator picks slots and opens sessions. It is shared by the entry engine
// and conflict resolution.
type Allocator struct {
	uow    shared.UnitOfWork
	slots  SlotStore
	alerts *AlertService
	clock  clock.Clock
	garage config.GarageConfig
	logger *slog.Logger
}

func NewAllocator(
	uow shared.UnitOfWork,
	slots SlotStore,
	alerts *AlertService,
	clk clock.Clock,
	garage config.GarageConfig,
	logger *slog.Logger,
) *Allocator {
	return &Allocator{
		uow:    uow,
		slots:  slots,
		alerts: alerts,
		clock:  clk,
		garage: garage,
		logger: logger,
	}
}

// FindSafeAlternative returns the first AVAILABLE regular slot that no
// confirmed reservation needs before the end of the current day, or nil.
func (a *Allocator) FindSafeAlternative(ctx context.Context) (*slot.Slot, error) {
	available, err := a.slots.ListByStatus(ctx, slot.StatusAvailable)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, nil
	}

	ids := slotIDs(available)
	endOfDay := clock.EndOfDay(a.clock.Now(), a.garage.Location())

	var (
		types    map[string]slot.Type
		reserved map[string]bool
	)
	err = a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if types, err = tx.LedgerSlots().TypesByID(ctx, ids); err != nil {
			return err
		}
		reserved, err = tx.Reservations().ReservedSlotIDs(ctx, ids, endOfDay)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range available {
		s := available[i]
		if types[s.ID] != slot.TypeRegular || reserved[s.ID] {
			continue
		}
		return &s, nil
	}
	return nil, nil
}

// FindEmergency returns the first AVAILABLE emergency slot, or nil.
func (a *Allocator) FindEmergency(ctx context.Context) (*slot.Slot, error) {
	available, err := a.slots.ListByStatus(ctx, slot.StatusAvailable)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, nil
	}

	var types map[string]slot.Type
	err = a.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		types, err = tx.LedgerSlots().TypesByID(ctx, slotIDs(available))
		return err
	})
	if err != nil {
		return nil, err
	}

	for i := range available {
		if types[available[i].ID] == slot.TypeEmergency {
			s := available[i]
			return &s, nil
		}
	}
	return nil, nil
}

// Claim moves an AVAILABLE slot to ASSIGNED for plate before any session
// exists. claimed is false when another writer got there first.
func (a *Allocator) Claim(ctx context.Context, slotID, plate string) (claimed bool, err error) {
	return a.slots.Update(ctx, slotID, []slot.Status{slot.StatusAvailable}, func(s *slot.Slot) {
		s.Assign(plate, nil)
	})
}

// Release undoes a claim that never got its session. A slot that moved on
// since the claim is left alone.
func (a *Allocator) Release(ctx context.Context, slotID, plate string) {
	_, err := a.slots.Update(ctx, slotID, []slot.Status{slot.StatusAssigned}, func(s *slot.Slot) {
		if s.ExpectedPlate() == plate && s.SessionID() == nil {
			s.Release()
		}
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to release slot claim",
			slog.String("slot_id", slotID), slog.String("plate", plate), slog.String("error", err.Error()))
	}
}

// Bind attaches the committed session to the claimed slot. The ledger is the
// truth; a failed bind is reported and the next camera event reconciles it.
func (a *Allocator) Bind(ctx context.Context, slotID, plate string, sessionID uuid.UUID) {
	bound := false
	applied, err := a.slots.Update(ctx, slotID, []slot.Status{slot.StatusAssigned, slot.StatusOccupied}, func(s *slot.Slot) {
		if s.ExpectedPlate() == plate {
			s.CurrentVehicle.SessionID = &sessionID
			bound = true
		}
	})
	if err == nil && applied && bound {
		return
	}
	detail := "slot no longer held for the vehicle"
	if err != nil {
		detail = err.Error()
	}
	_ = a.alerts.Raise(ctx, alert.New(alert.TypeDataIntegrity, alert.SeverityCritical,
		"Slot store out of sync",
		fmt.Sprintf("Session %s started but slot %s could not be marked ASSIGNED.", sessionID, slotID),
		a.clock.Now(),
		alert.WithSlot(slotID),
		alert.WithPlate(plate),
		alert.WithDetail("session_id", sessionID.String()),
		alert.WithDetail("error", detail),
	))
	a.logger.ErrorContext(ctx, "slot store update failed after session start",
		slog.String("slot_id", slotID), slog.String("error", detail))
}

// AssignAndStart fulfils res on slotID and opens its session. It fails with
// ErrSlotTaken when slotID is no longer AVAILABLE.
func (a *Allocator) AssignAndStart(ctx context.Context, res *reservation.Reservation, slotID string) (*session.Session, error) {
	spec := reservationSpec(res)
	spec.slotID = slotID
	return a.start(ctx, spec)
}

// RelocateAndStart fulfils res on a safe alternative slot. It returns nil, nil
// when none is left.
func (a *Allocator) RelocateAndStart(ctx context.Context, res *reservation.Reservation) (*session.Session, error) {
	return a.startOnAlternative(ctx, reservationSpec(res))
}

// StartWalkIn opens a session on a safe alternative slot for a vehicle
// admitted on a walk-in permit. It returns nil, nil when none is left.
func (a *Allocator) StartWalkIn(ctx context.Context, plate string, p permit.EntryPermit) (*session.Session, error) {
	return a.startOnAlternative(ctx, sessionSpec{
		userID:       p.UserID,
		vehicleID:    p.VehicleID,
		plate:        plate,
		expectedExit: p.ExpectedExitTime,
		method:       p.PaymentType,
		intentID:     p.PaymentIntentID,
	})
}

type sessionSpec struct {
	reservation  *reservation.Reservation
	userID       uuid.UUID
	vehicleID    uuid.UUID
	plate        string
	slotID       string
	expectedExit time.Time
	method       payment.Method
	intentID     *string
}

func reservationSpec(res *reservation.Reservation) sessionSpec {
	return sessionSpec{
		reservation:  res,
		userID:       res.UserID,
		vehicleID:    res.VehicleID,
		plate:        res.PlateNumber,
		expectedExit: res.Window.End,
		method:       res.PaymentMethod,
		intentID:     res.PaymentIntentID,
	}
}

func (a *Allocator) startOnAlternative(ctx context.Context, spec sessionSpec) (*session.Session, error) {
	for range maxClaimAttempts {
		alt, err := a.FindSafeAlternative(ctx)
		if err != nil || alt == nil {
			return nil, err
		}
		spec.slotID = alt.ID
		sess, err := a.start(ctx, spec)
		if errs.Is(err, ErrSlotTaken) {
			a.logger.InfoContext(ctx, "alternative slot taken, trying the next one",
				slog.String("slot_id", alt.ID), slog.String("plate", spec.plate))
			continue
		}
		return sess, err
	}
	return nil, nil
}

// start claims the slot, then writes the session, the reservation and both
// lifecycle jobs in one transaction. A failed write gives the claim back.
func (a *Allocator) start(ctx context.Context, spec sessionSpec) (*session.Session, error) {
	now := a.clock.Now()
	log := a.logger.With(slog.String("slot_id", spec.slotID), slog.String("plate", spec.plate))

	params := session.StartParams{
		UserID:           spec.userID,
		VehicleID:        spec.vehicleID,
		SlotID:           spec.slotID,
		EntryTime:        now,
		ExpectedExitTime: spec.expectedExit,
		PaymentMethod:    spec.method,
		PaymentIntentID:  spec.intentID,
	}
	if spec.reservation != nil {
		params.ReservationID = &spec.reservation.ID
	}
	sess, err := session.Start(params)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	claimed, err := a.Claim(ctx, spec.slotID, spec.plate)
	if err != nil {
		return nil, errs.Wrap(err, "claim slot")
	}
	if !claimed {
		return nil, errs.Mark(errs.Newf("slot %s is no longer available", spec.slotID), ErrSlotTaken)
	}

	payload := job.Lifecycle{SessionID: &sess.ID, VehicleID: &spec.vehicleID, SlotID: spec.slotID}
	if spec.reservation != nil {
		payload.ReservationID = &spec.reservation.ID
	}
	exitDelay := spec.expectedExit.Sub(now)
	if exitDelay < 0 {
		exitDelay = 0
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		exitJobID, err := tx.Jobs().Schedule(ctx, job.QueueLifecycle, job.KindCheckSessionExpiry, payload,
			job.Options{Delay: exitDelay})
		if err != nil {
			return errs.Mark(errs.Wrap(err, "schedule session expiry"), ErrSchedulingFailed)
		}
		occupancyJobID, err := tx.Jobs().Schedule(ctx, job.QueueLifecycle, job.KindCheckOccupancy, payload,
			job.Options{Delay: a.garage.OccupancyCheckDelay})
		if err != nil {
			return errs.Mark(errs.Wrap(err, "schedule occupancy check"), ErrSchedulingFailed)
		}
		sess.ExitCheckJobID = &exitJobID
		sess.OccupancyCheckJobID = &occupancyJobID

		if spec.reservation != nil {
			if err := tx.Reservations().MarkFulfilled(ctx, spec.reservation.ID, spec.slotID); err != nil {
				return err
			}
		}
		return tx.Sessions().Create(ctx, sess)
	})
	if err != nil {
		a.Release(ctx, spec.slotID, spec.plate)
		_ = a.alerts.Raise(ctx, alert.New(alert.TypeSystemFailure, alert.SeverityCritical,
			"Session start failed",
			fmt.Sprintf("Could not record a session for vehicle %s on slot %s. Entry was denied.", spec.plate, spec.slotID),
			now,
			alert.WithSlot(spec.slotID),
			alert.WithPlate(spec.plate),
			alert.WithDetail("error", err.Error()),
		))
		log.ErrorContext(ctx, "ledger write failed, slot claim released", slog.String("error", err.Error()))
		return nil, errs.Mark(err, ErrSessionStartFailed)
	}
	if spec.reservation != nil {
		spec.reservation.Fulfill(spec.slotID)
	}

	a.Bind(ctx, spec.slotID, spec.plate, sess.ID)
	log.InfoContext(ctx, "session started", slog.String("session_id", sess.ID.String()))
	return sess, nil
}

// cancelJobs is best effort; a job that already fired is not an error.
func cancelJobs(ctx context.Context, scheduler Scheduler, logger *slog.Logger, ids ...job.ID) {
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if err := scheduler.Cancel(ctx, id); err != nil {
			logger.WarnContext(ctx, "failed to cancel job", slog.String("job_id", id.String()), slog.String("error", err.Error()))
		}
	}
}

func jobIDs(ptrs ...*job.ID) []job.ID {
	var ids []job.ID
	for _, p := range ptrs {
		if p != nil {
			ids = append(ids, *p)
		}
	}
	return ids
}

func slotIDs(slots []slot.Slot) []string {
	ids := make([]string, len(slots))
	for i := range slots {
		ids[i] = slots[i].ID
	}
	return ids
}
