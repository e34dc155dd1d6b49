package usecase

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/usecase/shared"
)

const EventAlertRaised = "alert.raised"

// AlertService records alerts for the operator dashboard. The core never reads
// them back.
type AlertService struct {
	uow         shared.UnitOfWork
	broadcaster Broadcaster
	metrics     Metrics
	logger      *slog.Logger
}

func NewAlertService(uow shared.UnitOfWork, broadcaster Broadcaster, metrics Metrics, logger *slog.Logger) *AlertService {
	return &AlertService{
		uow:         uow,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
	}
}

// Raise persists the alert and pushes it to live dashboards. A failed write is
// logged and returned; callers on a modeled path usually ignore it.
func (s *AlertService) Raise(ctx context.Context, a *alert.Alert) error {
	err := s.uow.WithDB(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Alerts().Create(ctx, a)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record alert",
			slog.String("alert_type", string(a.Type)),
			slog.String("severity", string(a.Severity)),
			slog.String("description", a.Description),
			slog.String("error", err.Error()))
		return err
	}

	s.metrics.AlertRaised(ctx, a.Type, a.Severity)
	s.broadcaster.Broadcast(EventAlertRaised, a)

	level := slog.LevelWarn
	if a.Severity == alert.SeverityCritical {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "alert raised",
		slog.String("alert_id", a.ID.String()),
		slog.String("alert_type", string(a.Type)),
		slog.String("severity", string(a.Severity)),
		slog.String("title", a.Title))
	return nil
}
