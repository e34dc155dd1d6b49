package usecase

import (
	"context"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/billing"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

func RatesFromConfig(g config.GarageConfig) billing.Rates {
	return billing.Rates{
		RegularPerMinute: g.RegularRatePerMinute,
		PenaltyPerMinute: g.PenaltyRatePerMinute,
		ConflictFee:      g.ConflictFee,
		MinimumCharge:    g.MinimumCharge,
	}
}

// SessionCloser completes sessions and hands them to settlement. Every path
// that ends a stay normally goes through it, so a session is billed once.
type SessionCloser struct {
	uow    shared.UnitOfWork
	rates  billing.Rates
	logger *slog.Logger
}

func NewSessionCloser(uow shared.UnitOfWork, rates billing.Rates, logger *slog.Logger) *SessionCloser {
	return &SessionCloser{
		uow:    uow,
		rates:  rates,
		logger: logger,
	}
}

// Complete closes the session at `at`, cancels its pending lifecycle jobs and
// enqueues the billing job in the same transaction. closed is false when the
// session was already terminal; nothing is changed then.
func (c *SessionCloser) Complete(ctx context.Context, sessionID uuid.UUID, at time.Time) (sess *session.Session, closed bool, err error) {
	var amount int64
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		sess, closed = s, false
		if !s.IsActive() {
			return nil
		}
		pending := jobIDs(s.ExitCheckJobID, s.OccupancyCheckJobID)
		s.Complete(at)
		if err := tx.Sessions().Update(ctx, s); err != nil {
			return err
		}
		v, err := tx.Vehicles().FindByID(ctx, s.VehicleID)
		if err != nil {
			return err
		}
		for _, id := range pending {
			if err := tx.Jobs().Cancel(ctx, id); err != nil {
				return err
			}
		}

		amount = c.rates.Calculate(s.BillingInput())
		payload := job.Payment{
			SessionID:   s.ID,
			Amount:      amount,
			UserID:      s.UserID,
			PlateNumber: v.Plate,
		}
		if _, err := tx.Jobs().Schedule(ctx, job.QueuePayment, job.KindProcessPayment, payload,
			job.Options{Priority: job.PriorityPayment}); err != nil {
			return errs.Wrap(err, "schedule billing")
		}
		closed = true
		return nil
	})
	if err != nil {
		return sess, false, err
	}
	if !closed {
		return sess, false, nil
	}

	c.logger.InfoContext(ctx, "session completed",
		slog.String("session_id", sess.ID.String()),
		slog.String("slot_id", sess.SlotID),
		slog.Int64("amount", amount))
	return sess, true, nil
}
