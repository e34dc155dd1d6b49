package usecase

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"
)

type SlotLayout struct {
	ID    string
	Type  slot.Type
	Floor string
}

type ProvisionResult struct {
	Created int
	Kept    int
}

type ProvisionUseCase interface {
	// Provision registers slots in the ledger and creates their live
	// documents. Live documents that already exist keep their state.
	Provision(ctx context.Context, layout []SlotLayout) (ProvisionResult, error)
}

type provisionUseCaseImpl struct {
	uow    shared.UnitOfWork
	slots  SlotStore
	logger *slog.Logger
}

func NewProvisionUseCase(uow shared.UnitOfWork, slots SlotStore, logger *slog.Logger) ProvisionUseCase {
	return &provisionUseCaseImpl{uow: uow, slots: slots, logger: logger}
}

func (u *provisionUseCaseImpl) Provision(ctx context.Context, layout []SlotLayout) (ProvisionResult, error) {
	var res ProvisionResult
	for _, l := range layout {
		if _, err := slot.ParseType(string(l.Type)); err != nil {
			return res, errs.Mark(errs.Wrap(err, l.ID), errs.ErrDomainValidation)
		}
	}

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		for _, l := range layout {
			if err := tx.LedgerSlots().Upsert(ctx, l.ID, l.Type, l.Floor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}

	for _, l := range layout {
		_, err := u.slots.Get(ctx, l.ID)
		if err == nil {
			res.Kept++
			continue
		}
		if !infra.IsNotFound(err) {
			return res, err
		}
		s, err := slot.New(l.ID)
		if err != nil {
			return res, errs.Mark(err, errs.ErrDomainValidation)
		}
		if err := u.slots.Put(ctx, s); err != nil {
			return res, err
		}
		res.Created++
	}

	u.logger.InfoContext(ctx, "slots provisioned", slog.Int("created", res.Created), slog.Int("kept", res.Kept))
	return res, nil
}
