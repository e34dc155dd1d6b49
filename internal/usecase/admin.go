package usecase

import (
	"context"
	"errors"
	"log/slog"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrAlertNotFound       = errors.New("alert not found")
	ErrUnsupportedSlotMode = errors.New("slots can only be set to AVAILABLE, MAINTENANCE or DISABLED")
)

type SlotView struct {
	slot.Slot
	Type slot.Type
}

type AdminUseCase interface {
	ListSlots(ctx context.Context, status *slot.Status) ([]SlotView, error)
	GetSlot(ctx context.Context, id string) (*SlotView, error)
	// SetSlotStatus takes a free slot out of service or returns a closed one
	// to service. Slots holding a vehicle are never touched.
	SetSlotStatus(ctx context.Context, id string, status slot.Status) (*slot.Slot, error)
	ListAlerts(ctx context.Context, filter shared.AlertFilter) ([]alert.Alert, error)
	TransitionAlert(ctx context.Context, id uuid.UUID, to alert.Status, by uuid.UUID) (*alert.Alert, error)
	ListSessions(ctx context.Context, filter shared.SessionFilter) ([]session.Session, error)
}

type adminUseCaseImpl struct {
	uow    shared.UnitOfWork
	slots  SlotStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewAdminUseCase(uow shared.UnitOfWork, slots SlotStore, clk clock.Clock, logger *slog.Logger) AdminUseCase {
	return &adminUseCaseImpl{uow: uow, slots: slots, clock: clk, logger: logger}
}

func (u *adminUseCaseImpl) ListSlots(ctx context.Context, status *slot.Status) ([]SlotView, error) {
	var (
		live []slot.Slot
		err  error
	)
	if status != nil {
		live, err = u.slots.ListByStatus(ctx, *status)
	} else {
		live, err = u.slots.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return u.withTypes(ctx, live)
}

func (u *adminUseCaseImpl) GetSlot(ctx context.Context, id string) (*SlotView, error) {
	s, err := u.slots.Get(ctx, id)
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, errs.Mark(err, errs.ErrSlotNotFound)
		}
		return nil, err
	}
	views, err := u.withTypes(ctx, []slot.Slot{*s})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (u *adminUseCaseImpl) SetSlotStatus(ctx context.Context, id string, status slot.Status) (*slot.Slot, error) {
	var (
		expect []slot.Status
		mutate func(*slot.Slot)
	)
	now := u.clock.Now()
	switch status {
	case slot.StatusAvailable:
		expect = []slot.Status{slot.StatusMaintenance, slot.StatusDisabled}
		mutate = func(s *slot.Slot) { s.MarkCleaned(now) }
	case slot.StatusMaintenance:
		expect = []slot.Status{slot.StatusAvailable, slot.StatusDisabled}
		mutate = (*slot.Slot).SetMaintenance
	case slot.StatusDisabled:
		expect = []slot.Status{slot.StatusAvailable, slot.StatusMaintenance}
		mutate = (*slot.Slot).Disable
	default:
		return nil, errs.Mark(ErrUnsupportedSlotMode, errs.ErrDomainValidation)
	}

	applied, err := u.slots.Update(ctx, id, expect, mutate)
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, errs.Mark(err, errs.ErrSlotNotFound)
		}
		return nil, err
	}
	if !applied {
		return nil, errs.ErrSlotStateNotMet
	}
	u.logger.InfoContext(ctx, "slot status changed by operator",
		slog.String("slot_id", id), slog.String("status", string(status)))
	return u.slots.Get(ctx, id)
}

func (u *adminUseCaseImpl) ListAlerts(ctx context.Context, filter shared.AlertFilter) ([]alert.Alert, error) {
	var alerts []alert.Alert
	err := u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		alerts, err = tx.Alerts().List(ctx, filter)
		return err
	})
	return alerts, err
}

func (u *adminUseCaseImpl) TransitionAlert(ctx context.Context, id uuid.UUID, to alert.Status, by uuid.UUID) (*alert.Alert, error) {
	var a *alert.Alert
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if a, err = tx.Alerts().FindByID(ctx, id); err != nil {
			return err
		}
		if err := a.Transition(to, by, u.clock.Now()); err != nil {
			return err
		}
		return tx.Alerts().UpdateStatus(ctx, a)
	})
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, errs.Mark(err, ErrAlertNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (u *adminUseCaseImpl) ListSessions(ctx context.Context, filter shared.SessionFilter) ([]session.Session, error) {
	var sessions []session.Session
	err := u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		sessions, err = tx.Sessions().List(ctx, filter)
		return err
	})
	return sessions, err
}

func (u *adminUseCaseImpl) withTypes(ctx context.Context, live []slot.Slot) ([]SlotView, error) {
	var types map[string]slot.Type
	err := u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		types, err = tx.LedgerSlots().TypesByID(ctx, slotIDs(live))
		return err
	})
	if err != nil {
		return nil, err
	}
	views := make([]SlotView, len(live))
	for i := range live {
		views[i] = SlotView{Slot: live[i], Type: types[live[i].ID]}
	}
	return views, nil
}
