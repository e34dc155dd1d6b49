package usecase

import (
	"context"
	"errors"
	"log/slog"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidWebhook = errors.New("invalid payment webhook")

type WebhookUseCase interface {
	// HandlePaymentWebhook settles an unpaid session once its payment link was
	// paid and lifts the debt flag.
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error
}

type webhookUseCaseImpl struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
	clock   clock.Clock
	logger  *slog.Logger
}

func NewWebhookUseCase(uow shared.UnitOfWork, gateway PaymentGateway, clk clock.Clock, logger *slog.Logger) WebhookUseCase {
	return &webhookUseCaseImpl{uow: uow, gateway: gateway, clock: clk, logger: logger}
}

func (u *webhookUseCaseImpl) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := u.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return errs.Mark(err, ErrInvalidWebhook)
	}
	if ev.Type != WebhookCheckoutCompleted {
		u.logger.DebugContext(ctx, "payment webhook ignored", slog.String("type", ev.Type))
		return nil
	}

	sessionID, err := uuid.Parse(ev.Metadata["parking_session_id"])
	if err != nil {
		// acknowledged; a retry would carry the same metadata
		u.logger.WarnContext(ctx, "checkout without parking session", slog.String("error", err.Error()))
		return nil
	}
	log := u.logger.With(slog.String("session_id", sessionID.String()))

	var paid bool
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		sess, err := tx.Sessions().FindByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		txn, err := tx.Payments().FindLatestBySession(ctx, sess.ID)
		if err != nil {
			return err
		}
		if txn.Status == payment.StatusCompleted {
			return nil
		}
		txn.MarkCompleted(u.clock.Now())
		if err := tx.Payments().Update(ctx, txn); err != nil {
			return err
		}
		if err := tx.Vehicles().SetDebt(ctx, sess.VehicleID, false); err != nil {
			return err
		}
		if err := tx.Users().SetDebt(ctx, sess.UserID, false); err != nil {
			return err
		}
		paid = true
		return nil
	})
	if err != nil {
		if infra.IsNotFound(err) {
			log.WarnContext(ctx, "checkout for unknown session or transaction")
			return nil
		}
		return err
	}
	if paid {
		log.InfoContext(ctx, "outstanding payment settled through payment link")
	}
	return nil
}
