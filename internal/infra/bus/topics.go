// Package bus connects the orchestrator to the device message bus: inbound
// gate, slot and heartbeat messages become jobs, and gate decisions are
// published back.
package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"
)

const (
	suffixEntryRequest = "gate/entry/request"
	suffixExitRequest  = "gate/exit/request"
	suffixSlotEvent    = "slots/event"
	suffixHeartbeat    = "raspberry-status"
	suffixResponse     = "gate/event/response"
)

// Handler receives one inbound message. A returned error asks the transport
// to redeliver.
type Handler func(ctx context.Context, topic string, payload []byte) error

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type Subscriber interface {
	Start(ctx context.Context, h Handler) error
	Stop()
}

// Topics derives the concrete topic names from the configured prefix.
type Topics struct {
	Prefix string
}

func (t Topics) EntryRequest() string { return t.Prefix + suffixEntryRequest }
func (t Topics) ExitRequest() string  { return t.Prefix + suffixExitRequest }
func (t Topics) SlotEvent() string    { return t.Prefix + suffixSlotEvent }
func (t Topics) Response() string     { return t.Prefix + suffixResponse }

// Heartbeat is the topic a device publishes its status on.
func (t Topics) Heartbeat(deviceID string) string { return deviceID + "/" + suffixHeartbeat }

// Subscriptions lists the MQTT filters the orchestrator listens on.
func (t Topics) Subscriptions() []string {
	return []string{
		t.EntryRequest(),
		t.ExitRequest(),
		t.SlotEvent(),
		"+/" + suffixHeartbeat,
		t.Prefix + "+/" + suffixHeartbeat,
	}
}

// KindOf maps a topic to its job kind by suffix.
func KindOf(topic string) (job.Kind, bool) {
	switch {
	case strings.HasSuffix(topic, suffixEntryRequest):
		return job.KindEntryRequest, true
	case strings.HasSuffix(topic, suffixExitRequest):
		return job.KindExitRequest, true
	case strings.HasSuffix(topic, suffixSlotEvent):
		return job.KindSlotEvent, true
	case strings.HasSuffix(topic, "/"+suffixHeartbeat):
		return job.KindDeviceStatus, true
	default:
		return "", false
	}
}

// Router turns inbound messages into queued jobs.
type Router struct {
	ingest usecase.IngestUseCase
	logger *slog.Logger
}

func NewRouter(ingest usecase.IngestUseCase, logger *slog.Logger) *Router {
	return &Router{ingest: ingest, logger: logger}
}

// Handle queues the message. Unknown topics and malformed payloads are
// dropped; only a failure to queue asks for redelivery.
func (r *Router) Handle(ctx context.Context, topic string, payload []byte) error {
	kind, ok := KindOf(topic)
	if !ok {
		r.logger.DebugContext(ctx, "message on unrouted topic dropped", slog.String("topic", topic))
		return nil
	}
	id, err := r.ingest.Ingest(ctx, kind, payload)
	if err != nil {
		if errs.Is(err, usecase.ErrInvalidDeviceMessage) {
			return nil
		}
		return err
	}
	r.logger.DebugContext(ctx, "device message queued",
		slog.String("topic", topic), slog.String("kind", string(kind)), slog.String("job_id", id.String()))
	return nil
}

// DecisionPublisher publishes gate responses on the response topic.
type DecisionPublisher struct {
	pub   Publisher
	topic string
}

func NewDecisionPublisher(pub Publisher, topics Topics) *DecisionPublisher {
	return &DecisionPublisher{pub: pub, topic: topics.Response()}
}

func (p *DecisionPublisher) PublishDecision(ctx context.Context, resp decision.GateResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return errs.Wrap(err, "encode gate response")
	}
	return p.pub.Publish(ctx, p.topic, payload)
}
