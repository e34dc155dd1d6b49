package telemetry

import (
	"context"
	"net/http"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "garage-orchestrator"

// QueueDepth reports pending jobs per queue for the pending gauge.
type QueueDepth func(ctx context.Context) (map[job.Queue]int64, error)

// Metrics records the orchestrator counters on an OpenTelemetry meter whose
// readings are served in Prometheus format.
type Metrics struct {
	provider  *sdkmetric.MeterProvider
	meter     metric.Meter
	registry  *prometheus.Registry
	decisions metric.Int64Counter
	jobs      metric.Int64Counter
	alerts    metric.Int64Counter
}

func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, errs.Wrap(err, "failed to create prometheus exporter")
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(meterName)

	m := &Metrics{provider: provider, meter: meter, registry: registry}
	if m.decisions, err = meter.Int64Counter("garage.gate.decisions",
		metric.WithDescription("Gate decisions published, by decision and reason")); err != nil {
		return nil, errs.Wrap(err, "gate decision counter")
	}
	if m.jobs, err = meter.Int64Counter("garage.jobs.processed",
		metric.WithDescription("Jobs handled by the workers, by outcome")); err != nil {
		return nil, errs.Wrap(err, "job counter")
	}
	if m.alerts, err = meter.Int64Counter("garage.alerts.raised",
		metric.WithDescription("Operator alerts raised, by type and severity")); err != nil {
		return nil, errs.Wrap(err, "alert counter")
	}
	return m, nil
}

// ObserveQueueDepth registers the pending-jobs gauge.
func (m *Metrics) ObserveQueueDepth(depth QueueDepth) error {
	gauge, err := m.meter.Int64ObservableGauge("garage.jobs.pending",
		metric.WithDescription("Jobs waiting in each queue"))
	if err != nil {
		return errs.Wrap(err, "pending gauge")
	}
	_, err = m.meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		counts, err := depth(ctx)
		if err != nil {
			return err
		}
		for _, q := range job.Queues() {
			o.ObserveInt64(gauge, counts[q], metric.WithAttributes(attribute.String("queue", string(q))))
		}
		return nil
	}, gauge)
	return err
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

func (m *Metrics) GateDecision(ctx context.Context, d decision.Decision, reason decision.Reason) {
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", string(d)),
		attribute.String("reason", string(reason)),
	))
}

func (m *Metrics) JobProcessed(ctx context.Context, queue job.Queue, kind job.Kind, outcome string) {
	m.jobs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("queue", string(queue)),
		attribute.String("kind", string(kind)),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) AlertRaised(ctx context.Context, typ alert.Type, severity alert.Severity) {
	m.alerts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(typ)),
		attribute.String("severity", string(severity)),
	))
}
