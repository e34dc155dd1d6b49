package usecase

import (
	"context"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/device"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/clock"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase/shared"
)

const EventDeviceStatus = "device.status"

type DeviceView struct {
	device.Status
	Stale bool
}

type DeviceUseCase interface {
	RecordHeartbeat(ctx context.Context, hb job.DeviceStatus) error
	// List reports every known device, flagging those silent for longer than
	// the heartbeat window.
	List(ctx context.Context) ([]DeviceView, error)
}

type deviceUseCaseImpl struct {
	uow         shared.UnitOfWork
	broadcaster Broadcaster
	clock       clock.Clock
	window      time.Duration
	logger      *slog.Logger
}

func NewDeviceUseCase(uow shared.UnitOfWork, broadcaster Broadcaster, clk clock.Clock, window time.Duration, logger *slog.Logger) DeviceUseCase {
	return &deviceUseCaseImpl{
		uow:         uow,
		broadcaster: broadcaster,
		clock:       clk,
		window:      window,
		logger:      logger,
	}
}

func (u *deviceUseCaseImpl) RecordHeartbeat(ctx context.Context, hb job.DeviceStatus) error {
	lastSeen := hb.LastSeen
	if lastSeen.IsZero() {
		lastSeen = u.clock.Now()
	}
	st, err := device.NewStatus(hb.DeviceID, hb.Status, lastSeen, hb.CPUTemp)
	if err != nil {
		u.logger.WarnContext(ctx, "heartbeat dropped", slog.String("error", err.Error()))
		return nil
	}
	err = u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Devices().Upsert(ctx, st)
	})
	if err != nil {
		return errs.Wrap(err, "record device heartbeat")
	}
	u.broadcaster.Broadcast(EventDeviceStatus, st)
	u.logger.DebugContext(ctx, "device heartbeat recorded",
		slog.String("device_id", st.DeviceID), slog.String("status", st.Status))
	return nil
}

func (u *deviceUseCaseImpl) List(ctx context.Context) ([]DeviceView, error) {
	var devices []device.Status
	err := u.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		devices, err = tx.Devices().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()
	views := make([]DeviceView, len(devices))
	for i := range devices {
		views[i] = DeviceView{Status: devices[i], Stale: devices[i].IsStale(now, u.window)}
	}
	return views, nil
}
