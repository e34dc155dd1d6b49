package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/vehicle"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/usecase/shared"
)

const msgExitInternalError = "Exit could not be processed. Please contact an attendant."

type ExitUseCase interface {
	// HandleExit decides on an exit-gate request from the settlement state of
	// the vehicle's latest session and always publishes the decision.
	HandleExit(ctx context.Context, req job.ExitRequest) decision.GateResponse
}

type exitUseCaseImpl struct {
	uow    shared.UnitOfWork
	alerts *AlertService
	gate   gatePublisher
	clock  clock.Clock
	logger *slog.Logger
}

func NewExitUseCase(
	uow shared.UnitOfWork,
	alerts *AlertService,
	publisher DecisionPublisher,
	metrics Metrics,
	clk clock.Clock,
	publishTimeout time.Duration,
	logger *slog.Logger,
) ExitUseCase {
	return &exitUseCaseImpl{
		uow:    uow,
		alerts: alerts,
		gate:   gatePublisher{publisher: publisher, metrics: metrics, timeout: publishTimeout, logger: logger},
		clock:  clk,
		logger: logger,
	}
}

func (u *exitUseCaseImpl) HandleExit(ctx context.Context, req job.ExitRequest) (resp decision.GateResponse) {
	plate := normalizePlate(req.PlateNumber)
	outcome := decision.Deny(decision.DenyExit, decision.ReasonInternalError, msgExitInternalError)
	defer func() {
		if r := recover(); r != nil {
			u.logger.ErrorContext(ctx, "panic while deciding exit",
				slog.String("request_id", req.RequestID), slog.Any("panic", r))
			outcome = decision.Deny(decision.DenyExit, decision.ReasonInternalError, msgExitInternalError)
		}
		resp = outcome.Response(req.RequestID, u.clock.Now())
		resp.Gate = req.Gate
		resp.PlateNumber = plate
		u.gate.publish(ctx, resp)
	}()

	outcome = u.decide(ctx, req, plate)
	return resp
}

func (u *exitUseCaseImpl) decide(ctx context.Context, req job.ExitRequest, plate string) decision.Outcome {
	internal := decision.Deny(decision.DenyExit, decision.ReasonInternalError, msgExitInternalError)
	if plate == "" {
		u.logger.WarnContext(ctx, "exit request without plate", slog.String("request_id", req.RequestID))
		return decision.Deny(decision.DenyExit, decision.ReasonMissingPlate, msgMissingPlate)
	}
	log := u.logger.With(slog.String("plate", plate), slog.String("request_id", req.RequestID), slog.String("gate", req.Gate))

	var (
		veh  *vehicle.Vehicle
		sess *session.Session
		txn  *payment.Transaction
	)
	err := u.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if veh, err = optional(tx.Vehicles().FindByPlate(ctx, plate)); err != nil || veh == nil {
			return err
		}
		// latest by entry time regardless of status, so an in-flight exit is visible
		if sess, err = optional(tx.Sessions().FindLatestByVehicle(ctx, veh.ID)); err != nil || sess == nil || sess.IsActive() {
			return err
		}
		txn, err = optional(tx.Payments().FindLatestBySession(ctx, sess.ID))
		return err
	})
	if err != nil {
		log.ErrorContext(ctx, "exit lookup failed", slog.String("error", err.Error()))
		return internal
	}

	switch {
	case veh == nil:
		return decision.Deny(decision.DenyExit, decision.ReasonVehicleNotFound,
			"Vehicle not recognized. Please contact an attendant.")
	case sess == nil:
		return decision.Deny(decision.DenyExit, decision.ReasonNoSessionFound,
			"No parking session found for this vehicle. Please contact an attendant.")
	case sess.IsActive():
		return decision.Deny(decision.DenyExit, decision.ReasonSessionStillProcessing,
			"Your session is still being closed. Please wait a moment.")
	case txn == nil:
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeDataIntegrity, alert.SeverityCritical,
			"Payment transaction missing",
			fmt.Sprintf("Session %s of vehicle %s ended without a payment record.", sess.ID, plate),
			u.clock.Now(), alert.WithSlot(sess.SlotID), alert.WithPlate(plate),
			alert.WithDetail("session_id", sess.ID.String()),
			alert.WithDetail("gate", req.Gate)))
		return decision.Deny(decision.DenyExit, decision.ReasonTransactionMissing,
			"Payment record not found. Please contact an attendant.")
	}

	switch txn.Status {
	case payment.StatusCompleted:
		return decision.Allow(decision.AllowExit, decision.ReasonPaymentCompleted, "Payment received. Goodbye!", nil)
	case payment.StatusUnpaidExit:
		return decision.Allow(decision.AllowExit, decision.ReasonPaymentFailed,
			"Payment failed. A payment link has been sent to you.", nil)
	case payment.StatusCancelled:
		return decision.Allow(decision.AllowExit, decision.ReasonSessionCancelled, "Session cancelled. Goodbye!", nil)
	case payment.StatusPending:
		if txn.Method == payment.MethodCash {
			return decision.Deny(decision.DenyExit, decision.ReasonCashPending,
				"Please pay the attendant to exit.")
		}
		return decision.Allow(decision.AllowExit, decision.ReasonCardProcessing,
			"Your card payment is being processed. Goodbye!", nil)
	default:
		_ = u.alerts.Raise(ctx, alert.New(alert.TypeDataIntegrity, alert.SeverityHigh,
			"Unknown payment status at exit",
			fmt.Sprintf("Transaction %s of session %s has status %s.", txn.ID, sess.ID, txn.Status),
			u.clock.Now(), alert.WithSlot(sess.SlotID), alert.WithPlate(plate),
			alert.WithDetail("session_id", sess.ID.String()),
			alert.WithDetail("transaction_status", string(txn.Status))))
		return decision.Deny(decision.DenyExit, decision.ReasonUnknownPaymentStatus,
			"Payment status unclear. Please contact an attendant.")
	}
}
