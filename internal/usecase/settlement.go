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
	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/ptr"
	"garage-orchestrator/internal/usecase/shared"
)

type SettlementUseCase interface {
	// Settle runs once per completed session. A repeated job for a session
	// whose transaction already left PENDING does nothing.
	Settle(ctx context.Context, p job.Payment) error
}

type settlementUseCaseImpl struct {
	uow            shared.UnitOfWork
	gateway        PaymentGateway
	alerts         *AlertService
	notifier       *Notifier
	clock          clock.Clock
	captureTimeout time.Duration
	logger         *slog.Logger
}

func NewSettlementUseCase(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	alerts *AlertService,
	notifier *Notifier,
	clk clock.Clock,
	captureTimeout time.Duration,
	logger *slog.Logger,
) SettlementUseCase {
	return &settlementUseCaseImpl{
		uow:            uow,
		gateway:        gateway,
		alerts:         alerts,
		notifier:       notifier,
		clock:          clk,
		captureTimeout: captureTimeout,
		logger:         logger,
	}
}

type settlementState struct {
	sess    *session.Session
	txn     *payment.Transaction
	owner   *user.User
	resumed bool
	settled bool
}

func (u *settlementUseCaseImpl) Settle(ctx context.Context, p job.Payment) error {
	log := u.logger.With(slog.String("session_id", p.SessionID.String()), slog.String("plate", p.PlateNumber))
	now := u.clock.Now()

	st, err := u.open(ctx, p, now)
	if err != nil {
		if infra.IsNotFound(err) {
			log.ErrorContext(ctx, "settlement for unknown session dropped")
			return nil
		}
		return err
	}
	if st.settled {
		log.InfoContext(ctx, "session already settled")
		return nil
	}

	txn := st.txn
	log = log.With(slog.String("transaction_id", txn.ID.String()), slog.Int64("amount", txn.Amount))

	if txn.Status == payment.StatusCompleted {
		// zero amount, nothing to capture
		u.releaseHold(ctx, log, txn)
		log.InfoContext(ctx, "zero amount session settled")
		return nil
	}

	switch txn.Method {
	case payment.MethodCash:
		if st.resumed {
			return nil
		}
		_ = u.alerts.Raise(ctx, alert.New(alert.TypePaymentHelpRequest, alert.SeverityCritical,
			"Cash payment required",
			fmt.Sprintf("Vehicle %s owes %s in cash. An attendant is needed at the exit.", p.PlateNumber, formatAmount(txn.Amount)),
			now, alert.WithSlot(st.sess.SlotID), alert.WithPlate(p.PlateNumber),
			alert.WithDetail("session_id", st.sess.ID.String()),
			alert.WithDetail("amount", txn.Amount)))
		return nil

	case payment.MethodCard:
		captured := false
		if st.resumed {
			// an earlier attempt may have captured before its ledger write failed
			state, err := u.intentState(ctx, txn)
			if err != nil {
				return err
			}
			captured = state == IntentCaptured
		}
		if !captured {
			if err := u.capture(ctx, txn); err != nil {
				log.WarnContext(ctx, "card capture failed", slog.String("error", err.Error()))
				return u.handleFailedCapture(ctx, log, st, p.PlateNumber)
			}
		}
		err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			txn.MarkCompleted(u.clock.Now())
			return tx.Payments().Update(ctx, txn)
		})
		if err != nil {
			return err
		}
		u.notifier.PushUser(ctx, st.sess.UserID, "Payment Successful",
			fmt.Sprintf("We charged %s for your parking session. Thank you!", formatAmount(txn.Amount)),
			map[string]string{"session_id": st.sess.ID.String()})
		log.InfoContext(ctx, "card payment captured")
		return nil

	default:
		log.ErrorContext(ctx, "unknown payment method", slog.String("method", string(txn.Method)))
		return nil
	}
}

// open locks the session and creates the PENDING audit record, or resumes the
// one a previous attempt left behind.
func (u *settlementUseCaseImpl) open(ctx context.Context, p job.Payment, now time.Time) (*settlementState, error) {
	st := &settlementState{}
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		s, err := tx.Sessions().FindByIDForUpdate(ctx, p.SessionID)
		if err != nil {
			return err
		}
		st.sess = s

		if st.owner, err = optional(tx.Users().FindByID(ctx, s.UserID)); err != nil {
			return err
		}

		latest, err := optional(tx.Payments().FindLatestBySession(ctx, s.ID))
		if err != nil {
			return err
		}
		if latest != nil {
			if latest.Status != payment.StatusPending {
				st.settled = true
				return nil
			}
			st.txn = latest
			st.resumed = true
			return nil
		}

		st.txn = payment.NewPending(s.ID, p.Amount, s.PaymentMethod, s.PaymentIntentID)
		if p.Amount == 0 {
			st.txn.MarkCompleted(now)
		}
		return tx.Payments().Create(ctx, st.txn)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (u *settlementUseCaseImpl) capture(ctx context.Context, txn *payment.Transaction) error {
	if txn.PaymentIntentID == nil || *txn.PaymentIntentID == "" {
		return payment.ErrIntentMissing
	}
	cctx, cancel := context.WithTimeout(ctx, u.captureTimeout)
	defer cancel()
	return u.gateway.Capture(cctx, *txn.PaymentIntentID, txn.Amount, "capture-"+txn.ID.String())
}

func (u *settlementUseCaseImpl) intentState(ctx context.Context, txn *payment.Transaction) (IntentState, error) {
	if txn.PaymentIntentID == nil || *txn.PaymentIntentID == "" {
		return IntentHeld, nil
	}
	cctx, cancel := context.WithTimeout(ctx, u.captureTimeout)
	defer cancel()
	return u.gateway.IntentState(cctx, *txn.PaymentIntentID)
}

func (u *settlementUseCaseImpl) handleFailedCapture(ctx context.Context, log *slog.Logger, st *settlementState, plate string) error {
	txn := st.txn
	sess := st.sess

	var phone, email string
	if st.owner != nil {
		phone = ptr.Deref(st.owner.Phone)
		email = ptr.Deref(st.owner.Email)
	}

	lctx, cancel := context.WithTimeout(ctx, u.captureTimeout)
	link, err := u.gateway.CreatePaymentLink(lctx,
		fmt.Sprintf("Parking session %s (%s)", sess.ID, plate),
		txn.Amount,
		map[string]string{
			"parking_session_id": sess.ID.String(),
			"user_phone":         phone,
			"user_mail":          email,
		})
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "failed to create payment link", slog.String("error", err.Error()))
		link = ""
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		txn.MarkUnpaidExit(link)
		if err := tx.Payments().Update(ctx, txn); err != nil {
			return err
		}
		if err := tx.Vehicles().SetDebt(ctx, sess.VehicleID, true); err != nil {
			return err
		}
		return tx.Users().SetDebt(ctx, sess.UserID, true)
	})
	if err != nil {
		return err
	}

	u.releaseHold(ctx, log, txn)

	body := fmt.Sprintf("Your card payment of %s failed.", formatAmount(txn.Amount))
	if link != "" {
		body += " Please pay here: " + link
	}
	if sess.IsWalkIn() {
		_ = u.alerts.Raise(ctx, alert.New(alert.TypePaymentHelpRequest, alert.SeverityCritical,
			"Walk-in card payment failed",
			fmt.Sprintf("Capture of %s for vehicle %s failed. A payment link was sent by SMS.", formatAmount(txn.Amount), plate),
			u.clock.Now(), alert.WithSlot(sess.SlotID), alert.WithPlate(plate),
			alert.WithDetail("session_id", sess.ID.String()),
			alert.WithDetail("checkout_url", link)))
		u.notifier.SMS(ctx, phone, body)
	} else {
		u.notifier.PushUser(ctx, sess.UserID, "Payment Failed", body,
			map[string]string{"session_id": sess.ID.String(), "checkout_url": link})
	}

	log.WarnContext(ctx, "session left unpaid, vehicle flagged")
	return nil
}

// releaseHold cancels the card authorization; failures are logged only.
func (u *settlementUseCaseImpl) releaseHold(ctx context.Context, log *slog.Logger, txn *payment.Transaction) {
	if txn.Method != payment.MethodCard || txn.PaymentIntentID == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, u.captureTimeout)
	defer cancel()
	if err := u.gateway.Cancel(cctx, *txn.PaymentIntentID); err != nil {
		log.WarnContext(ctx, "failed to cancel card hold", slog.String("error", err.Error()))
	}
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d EGP", minor/100, minor%100)
}
