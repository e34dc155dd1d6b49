package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/infra"
)

// gatePublisher sends every gate decision exactly once, even when the
// decision itself failed or the caller's context is already cancelled.
type gatePublisher struct {
	publisher DecisionPublisher
	metrics   Metrics
	timeout   time.Duration
	logger    *slog.Logger
}

func (g gatePublisher) publish(ctx context.Context, resp decision.GateResponse) {
	g.metrics.GateDecision(ctx, resp.Decision, resp.Reason)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()
	if err := g.publisher.PublishDecision(pctx, resp); err != nil {
		g.logger.ErrorContext(ctx, "failed to publish gate decision",
			slog.String("request_id", resp.RequestID),
			slog.String("decision", string(resp.Decision)),
			slog.String("reason", string(resp.Reason)),
			slog.String("error", err.Error()))
		return
	}
	g.logger.InfoContext(ctx, "gate decision published",
		slog.String("request_id", resp.RequestID),
		slog.String("decision", string(resp.Decision)),
		slog.String("reason", string(resp.Reason)))
}

func normalizePlate(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// optional turns a NOT_FOUND repository error into a nil result.
func optional[T any](v *T, err error) (*T, error) {
	if err != nil {
		if infra.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}
