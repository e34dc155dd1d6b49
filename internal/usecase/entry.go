package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/reservation"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/domain/vehicle"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"
)

const (
	msgEntryInternalError = "Entry could not be processed. Please contact an attendant."
	msgMissingPlate       = "The plate could not be read. Please contact an attendant."
)

type EntryUseCase interface {
	// HandleEntry decides on an entry-gate request and publishes the decision.
	// The response is always published, also when deciding failed.
	HandleEntry(ctx context.Context, req job.EntryRequest) decision.GateResponse
}

type entryUseCaseImpl struct {
	uow       shared.UnitOfWork
	slots     SlotStore
	permits   PermitStore
	allocator *Allocator
	gate      gatePublisher
	clock     clock.Clock
	garage    config.GarageConfig
	logger    *slog.Logger
}

func NewEntryUseCase(
	uow shared.UnitOfWork,
	slots SlotStore,
	permits PermitStore,
	allocator *Allocator,
	publisher DecisionPublisher,
	metrics Metrics,
	clk clock.Clock,
	garage config.GarageConfig,
	publishTimeout time.Duration,
	logger *slog.Logger,
) EntryUseCase {
	return &entryUseCaseImpl{
		uow:       uow,
		slots:     slots,
		permits:   permits,
		allocator: allocator,
		gate:      gatePublisher{publisher: publisher, metrics: metrics, timeout: publishTimeout, logger: logger},
		clock:     clk,
		garage:    garage,
		logger:    logger,
	}
}

func (u *entryUseCaseImpl) HandleEntry(ctx context.Context, req job.EntryRequest) (resp decision.GateResponse) {
	outcome := decision.Deny(decision.DenyEntry, decision.ReasonInternalError, msgEntryInternalError)
	defer func() {
		if r := recover(); r != nil {
			u.logger.ErrorContext(ctx, "panic while deciding entry",
				slog.String("request_id", req.RequestID), slog.Any("panic", r))
			outcome = decision.Deny(decision.DenyEntry, decision.ReasonInternalError, msgEntryInternalError)
		}
		resp = outcome.Response(req.RequestID, u.clock.Now())
		u.gate.publish(ctx, resp)
	}()

	outcome = u.decide(ctx, req)
	return resp
}

func (u *entryUseCaseImpl) decide(ctx context.Context, req job.EntryRequest) decision.Outcome {
	internal := decision.Deny(decision.DenyEntry, decision.ReasonInternalError, msgEntryInternalError)

	plate := normalizePlate(req.PlateNumber)
	if plate == "" {
		u.logger.WarnContext(ctx, "entry request without plate", slog.String("request_id", req.RequestID))
		return decision.Deny(decision.DenyEntry, decision.ReasonMissingPlate, msgMissingPlate)
	}
	log := u.logger.With(slog.String("plate", plate), slog.String("request_id", req.RequestID))
	now := u.clock.Now()

	var (
		veh *vehicle.Vehicle
		res *reservation.Reservation
	)
	err := u.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if veh, err = optional(tx.Vehicles().FindByPlate(ctx, plate)); err != nil {
			return err
		}
		res, err = optional(tx.Reservations().FindAdmissible(ctx, plate, now, u.garage.EarlyEntryGrace))
		return err
	})
	if err != nil {
		log.ErrorContext(ctx, "entry lookup failed", slog.String("error", err.Error()))
		return internal
	}

	if veh != nil && veh.HasOutstandingDebt {
		return decision.Deny(decision.DenyEntry, decision.ReasonVehicleBlacklisted,
			"This vehicle has an unpaid balance. Please settle it before entering.")
	}
	if res != nil {
		return u.honorReservation(ctx, log, res)
	}
	return u.admitWalkIn(ctx, log, plate)
}

func (u *entryUseCaseImpl) honorReservation(ctx context.Context, log *slog.Logger, res *reservation.Reservation) decision.Outcome {
	internal := decision.Deny(decision.DenyEntry, decision.ReasonInternalError, msgEntryInternalError)
	log = log.With(slog.String("reservation_id", res.ID.String()))

	live, err := u.slots.Get(ctx, res.SlotID)
	if err != nil {
		log.ErrorContext(ctx, "failed to read reserved slot",
			slog.String("slot_id", res.SlotID), slog.String("error", err.Error()))
		return internal
	}

	switch {
	case live.Status == slot.StatusAvailable:
		_, err := u.allocator.AssignAndStart(ctx, res, live.ID)
		if errs.Is(err, ErrSlotTaken) {
			log.InfoContext(ctx, "reserved slot claimed by another entry", slog.String("slot_id", live.ID))
			return reservedSlotUnavailable()
		}
		if err != nil {
			return internal
		}
		return decision.Allow(decision.AllowEntry, decision.ReasonReservationHonored,
			fmt.Sprintf("Welcome! Please proceed to your reserved slot %s.", live.ID), &live.ID)

	case live.Status == slot.StatusOccupied && res.IsStacked:
		sess, err := u.allocator.RelocateAndStart(ctx, res)
		if err != nil {
			log.ErrorContext(ctx, "stacked relocation failed", slog.String("error", err.Error()))
			return internal
		}
		if sess == nil {
			return decision.Deny(decision.DenyEntry, decision.ReasonNoSafeAlternative,
				"Your reserved slot is still occupied and no alternative slot is free.")
		}
		return decision.Allow(decision.AllowEntry, decision.ReasonStackedRelocated,
			fmt.Sprintf("Your reserved slot is occupied. Please proceed to slot %s instead.", sess.SlotID), &sess.SlotID)

	default:
		log.InfoContext(ctx, "reserved slot unavailable",
			slog.String("slot_id", live.ID), slog.String("status", string(live.Status)))
		return reservedSlotUnavailable()
	}
}

func reservedSlotUnavailable() decision.Outcome {
	return decision.Deny(decision.DenyEntry, decision.ReasonReservedSlotUnavailable,
		"Your reserved slot is currently unavailable. Please contact an attendant.")
}

func (u *entryUseCaseImpl) admitWalkIn(ctx context.Context, log *slog.Logger, plate string) decision.Outcome {
	internal := decision.Deny(decision.DenyEntry, decision.ReasonInternalError, msgEntryInternalError)

	p, err := u.permits.Get(ctx, plate)
	if err != nil {
		log.ErrorContext(ctx, "failed to read entry permit", slog.String("error", err.Error()))
		return internal
	}
	if p == nil {
		return decision.Deny(decision.DenyEntry, decision.ReasonNoReservationOrPermit,
			"No reservation or walk-in registration found for this vehicle.")
	}
	if err := p.Validate(); err != nil {
		log.ErrorContext(ctx, "invalid entry permit", slog.String("error", err.Error()))
		return internal
	}

	sess, err := u.allocator.StartWalkIn(ctx, plate, *p)
	if err != nil {
		log.ErrorContext(ctx, "walk-in start failed", slog.String("error", err.Error()))
		return internal
	}
	if sess == nil {
		return decision.Deny(decision.DenyEntry, decision.ReasonGarageFull,
			"Sorry, the garage is full.")
	}
	if err := u.permits.Delete(ctx, plate); err != nil {
		log.WarnContext(ctx, "failed to consume entry permit", slog.String("error", err.Error()))
	}
	return decision.Allow(decision.AllowEntry, decision.ReasonWalkInAccepted,
		fmt.Sprintf("Welcome! Please proceed to slot %s.", sess.SlotID), &sess.SlotID)
}
