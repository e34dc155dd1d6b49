// Package worker runs one polling pool per job queue and dispatches each
// claimed job to its handler.
package worker

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/usecase"
)

// Dispatcher routes a job to the use case owning its kind.
type Dispatcher struct {
	entry      usecase.EntryUseCase
	exit       usecase.ExitUseCase
	occupancy  usecase.OccupancyUseCase
	lifecycle  usecase.LifecycleUseCase
	settlement usecase.SettlementUseCase
	devices    usecase.DeviceUseCase
	logger     *slog.Logger
}

func NewDispatcher(
	entry usecase.EntryUseCase,
	exit usecase.ExitUseCase,
	occupancy usecase.OccupancyUseCase,
	lifecycle usecase.LifecycleUseCase,
	settlement usecase.SettlementUseCase,
	devices usecase.DeviceUseCase,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		entry:      entry,
		exit:       exit,
		occupancy:  occupancy,
		lifecycle:  lifecycle,
		settlement: settlement,
		devices:    devices,
		logger:     logger,
	}
}

// Handle runs the job. A returned error is retried by the queue unless it
// wraps job.ErrInvalidPayload or job.ErrUnknownKind.
func (d *Dispatcher) Handle(ctx context.Context, j job.Job) error {
	switch j.Kind {
	case job.KindEntryRequest:
		req, err := job.Decode[job.EntryRequest](j)
		if err != nil {
			return err
		}
		d.entry.HandleEntry(ctx, req)
		return nil

	case job.KindExitRequest:
		req, err := job.Decode[job.ExitRequest](j)
		if err != nil {
			return err
		}
		d.exit.HandleExit(ctx, req)
		return nil

	case job.KindSlotEvent:
		ev, err := job.Decode[job.SlotEvent](j)
		if err != nil {
			return err
		}
		return d.occupancy.HandleSlotEvent(ctx, ev)

	case job.KindCheckOccupancy:
		p, err := job.Decode[job.Lifecycle](j)
		if err != nil {
			return err
		}
		return d.lifecycle.CheckOccupancy(ctx, p)

	case job.KindCheckSessionExpiry:
		p, err := job.Decode[job.Lifecycle](j)
		if err != nil {
			return err
		}
		return d.lifecycle.CheckSessionExpiry(ctx, p)

	case job.KindCheckGracePeriodEnded:
		p, err := job.Decode[job.Lifecycle](j)
		if err != nil {
			return err
		}
		return d.lifecycle.CheckGracePeriodExpiry(ctx, p)

	case job.KindProcessPayment:
		p, err := job.Decode[job.Payment](j)
		if err != nil {
			return err
		}
		return d.settlement.Settle(ctx, p)

	case job.KindDeviceStatus:
		p, err := job.Decode[job.DeviceStatus](j)
		if err != nil {
			return err
		}
		return d.devices.RecordHeartbeat(ctx, p)

	default:
		_, err := j.Kind.Queue()
		return err
	}
}
