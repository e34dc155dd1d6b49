package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/errs"
)

var ErrInvalidDeviceMessage = errors.New("invalid device message")

type IngestUseCase interface {
	// Ingest validates a raw device message of the given kind and queues it.
	Ingest(ctx context.Context, kind job.Kind, raw []byte) (job.ID, error)
}

type ingestUseCaseImpl struct {
	scheduler Scheduler
	logger    *slog.Logger
}

func NewIngestUseCase(scheduler Scheduler, logger *slog.Logger) IngestUseCase {
	return &ingestUseCaseImpl{scheduler: scheduler, logger: logger}
}

func (u *ingestUseCaseImpl) Ingest(ctx context.Context, kind job.Kind, raw []byte) (job.ID, error) {
	queue, err := kind.Queue()
	if err != nil {
		return job.ID{}, errs.Mark(err, ErrInvalidDeviceMessage)
	}

	payload, err := decodeDeviceMessage(kind, raw)
	if err != nil {
		u.logger.WarnContext(ctx, "device message rejected",
			slog.String("kind", string(kind)), slog.String("error", err.Error()))
		return job.ID{}, errs.Mark(err, ErrInvalidDeviceMessage)
	}

	opts := job.Options{Priority: job.PriorityDefault}
	if kind == job.KindSlotEvent {
		opts.Priority = job.PrioritySlotEvent
	}
	id, err := u.scheduler.Schedule(ctx, queue, kind, payload, opts)
	if err != nil {
		return job.ID{}, errs.Wrap(err, "queue device message")
	}
	return id, nil
}

// decodeDeviceMessage checks the fields a handler cannot work without. A
// missing plate on a gate request is left to the engine, which answers it.
func decodeDeviceMessage(kind job.Kind, raw []byte) (any, error) {
	switch kind {
	case job.KindEntryRequest:
		var m job.EntryRequest
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if m.RequestID == "" {
			return nil, errors.New("requestId is required")
		}
		return m, nil

	case job.KindExitRequest:
		var m job.ExitRequest
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if m.RequestID == "" {
			return nil, errors.New("requestId is required")
		}
		return m, nil

	case job.KindSlotEvent:
		var m job.SlotEvent
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if m.SlotID == "" {
			return nil, errors.New("slot_id is required")
		}
		if m.EventType != job.SlotEventOccupied && m.EventType != job.SlotEventAvailable {
			return nil, errors.New("event_type must be OCCUPIED or AVAILABLE")
		}
		return m, nil

	case job.KindDeviceStatus:
		var m job.DeviceStatus
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if m.DeviceID == "" {
			return nil, errors.New("deviceId is required")
		}
		return m, nil

	default:
		return nil, job.ErrUnknownKind
	}
}
