package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/permit"
	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/domain/vehicle"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/pkg/ptr"
	"garage-orchestrator/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration        = errors.New("expected duration must be between 1 minute and 24 hours")
	ErrPaymentMethodRequired  = errors.New("card payment requires a payment method")
	ErrWalkInBlacklisted      = errors.New("vehicle or owner has an outstanding balance")
	ErrVehicleAlreadyParked   = errors.New("vehicle already has an active session")
	ErrPaymentAuthorization   = errors.New("card authorization failed")
	ErrPermitStoreUnavailable = errors.New("entry permit could not be stored")
)

const maxWalkInStay = 24 * time.Hour

type WalkInRequest struct {
	Name                    string
	Phone                   string
	Email                   string
	PlateNumber             string
	ExpectedDurationMinutes int
	PaymentType             string
	PaymentMethodID         string
}

type WalkInResult struct {
	UserID           uuid.UUID
	VehicleID        uuid.UUID
	PlateNumber      string
	PaymentType      payment.Method
	PaymentIntentID  *string
	ExpectedExitTime time.Time
	PermitExpiresAt  time.Time
}

type WalkInUseCase interface {
	// Register records a walk-in driver and writes the short-lived entry
	// permit the entry gate consumes.
	Register(ctx context.Context, req WalkInRequest) (*WalkInResult, error)
}

type walkInUseCaseImpl struct {
	uow        shared.UnitOfWork
	permits    PermitStore
	gateway    PaymentGateway
	clock      clock.Clock
	garage     config.GarageConfig
	holdAmount int64
	logger     *slog.Logger
}

func NewWalkInUseCase(
	uow shared.UnitOfWork,
	permits PermitStore,
	gateway PaymentGateway,
	clk clock.Clock,
	garage config.GarageConfig,
	holdAmount int64,
	logger *slog.Logger,
) WalkInUseCase {
	return &walkInUseCaseImpl{
		uow:        uow,
		permits:    permits,
		gateway:    gateway,
		clock:      clk,
		garage:     garage,
		holdAmount: holdAmount,
		logger:     logger,
	}
}

type walkInParams struct {
	name     string
	phone    user.Phone
	email    *user.Email
	plate    vehicle.Plate
	duration time.Duration
	method   payment.Method
}

func (u *walkInUseCaseImpl) Register(ctx context.Context, req WalkInRequest) (*WalkInResult, error) {
	params, err := u.validate(req)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	var (
		owner *user.User
		veh   *vehicle.Vehicle
	)
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		if owner, err = tx.Users().UpsertByPhone(ctx, user.NewWalkIn(params.name, params.phone, params.email)); err != nil {
			return err
		}
		if owner.HasOutstandingDebt {
			return ErrWalkInBlacklisted
		}
		existing, err := optional(tx.Vehicles().FindByPlate(ctx, params.plate.String()))
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.HasOutstandingDebt {
				return ErrWalkInBlacklisted
			}
			active, err := optional(tx.Sessions().FindActiveByVehicle(ctx, existing.ID))
			if err != nil {
				return err
			}
			if active != nil {
				return ErrVehicleAlreadyParked
			}
		}
		veh, err = tx.Vehicles().Upsert(ctx, vehicle.New(owner.ID, params.plate))
		return err
	})
	if err != nil {
		return nil, err
	}

	var intentID *string
	if params.method == payment.MethodCard {
		id, err := u.authorizeHold(ctx, owner, params, req.PaymentMethodID)
		if err != nil {
			return nil, errs.Mark(err, ErrPaymentAuthorization)
		}
		intentID = &id
	}

	now := u.clock.Now()
	p := permit.EntryPermit{
		UserID:           owner.ID,
		VehicleID:        veh.ID,
		PaymentIntentID:  intentID,
		PaymentType:      params.method,
		ExpectedExitTime: now.Add(params.duration),
	}
	if err := u.permits.Put(ctx, params.plate.String(), p, u.garage.EntryPermitTTL); err != nil {
		if intentID != nil {
			if cerr := u.gateway.Cancel(ctx, *intentID); cerr != nil {
				u.logger.WarnContext(ctx, "failed to release hold of unregistered walk-in", slog.String("error", cerr.Error()))
			}
		}
		return nil, errs.Mark(err, ErrPermitStoreUnavailable)
	}

	u.logger.InfoContext(ctx, "walk-in registered",
		slog.String("plate", params.plate.String()),
		slog.String("user_id", owner.ID.String()),
		slog.String("payment_type", string(params.method)))

	return &WalkInResult{
		UserID:           owner.ID,
		VehicleID:        veh.ID,
		PlateNumber:      params.plate.String(),
		PaymentType:      params.method,
		PaymentIntentID:  intentID,
		ExpectedExitTime: p.ExpectedExitTime,
		PermitExpiresAt:  now.Add(u.garage.EntryPermitTTL),
	}, nil
}

func (u *walkInUseCaseImpl) validate(req WalkInRequest) (walkInParams, error) {
	var (
		p   walkInParams
		err error
	)
	if p.plate, err = vehicle.NewPlate(req.PlateNumber); err != nil {
		return p, err
	}
	if p.phone, err = user.NewPhone(req.Phone); err != nil {
		return p, err
	}
	if req.Email != "" {
		e, err := user.NewEmail(req.Email)
		if err != nil {
			return p, err
		}
		p.email = &e
	}
	if p.method, err = payment.ParseMethod(req.PaymentType); err != nil {
		return p, err
	}
	if p.method == payment.MethodCard && req.PaymentMethodID == "" {
		return p, ErrPaymentMethodRequired
	}
	p.duration = time.Duration(req.ExpectedDurationMinutes) * time.Minute
	if p.duration < time.Minute || p.duration > maxWalkInStay {
		return p, ErrInvalidDuration
	}
	p.name = req.Name
	if p.name == "" {
		p.name = p.plate.String()
	}
	return p, nil
}

func (u *walkInUseCaseImpl) authorizeHold(ctx context.Context, owner *user.User, params walkInParams, paymentMethodID string) (string, error) {
	customerID := ptr.Deref(owner.StripeCustomerID)
	if customerID == "" {
		var email string
		if params.email != nil {
			email = params.email.Value()
		}
		id, err := u.gateway.CreateCustomer(ctx, CustomerParams{
			Name:            params.name,
			Email:           email,
			Phone:           params.phone.Value(),
			PaymentMethodID: paymentMethodID,
		})
		if err != nil {
			return "", err
		}
		customerID = id
		err = u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Users().SetStripeCustomer(ctx, owner.ID, customerID)
		})
		if err != nil {
			u.logger.WarnContext(ctx, "payment customer id not stored", slog.String("error", err.Error()))
		}
	}

	return u.gateway.AuthorizeHold(ctx, HoldParams{
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		Amount:          u.holdAmount,
		Metadata: map[string]string{
			"plate_number": params.plate.String(),
			"user_id":      owner.ID.String(),
		},
	})
}
