package usecase

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

// Notifier delivers push and SMS messages. Delivery failures are logged and
// swallowed; they never block settlement or a gate decision.
type Notifier struct {
	uow    shared.UnitOfWork
	push   PushSender
	sms    SMSSender
	logger *slog.Logger
}

func NewNotifier(uow shared.UnitOfWork, push PushSender, sms SMSSender, logger *slog.Logger) *Notifier {
	return &Notifier{uow: uow, push: push, sms: sms, logger: logger}
}

func (n *Notifier) PushUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	var token *string
	err := n.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		u, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		token = u.PushToken
		return nil
	})
	if err != nil {
		n.logger.WarnContext(ctx, "push skipped: user lookup failed",
			slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		return
	}
	if token == nil || *token == "" {
		n.logger.DebugContext(ctx, "push skipped: no push token", slog.String("user_id", userID.String()))
		return
	}
	if err := n.push.Push(ctx, *token, title, body, data); err != nil {
		n.logger.WarnContext(ctx, "push notification failed",
			slog.String("user_id", userID.String()), slog.String("error", err.Error()))
	}
}

func (n *Notifier) SMS(ctx context.Context, phone, body string) {
	if phone == "" {
		n.logger.WarnContext(ctx, "sms skipped: no phone number")
		return
	}
	if err := n.sms.Send(ctx, phone, body); err != nil {
		n.logger.WarnContext(ctx, "sms notification failed", slog.String("error", err.Error()))
	}
}
