package bus

import (
	"context"
	"log/slog"
	"time"

	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT talks to the broker directly. It is both the subscriber for device
// messages and the publisher for gate responses.
type MQTT struct {
	client  mqtt.Client
	cfg     config.BusConfig
	topics  Topics
	logger  *slog.Logger
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewMQTT(cfg config.BusConfig, logger *slog.Logger) *MQTT {
	m := &MQTT{cfg: cfg, topics: Topics{Prefix: cfg.TopicPrefix}, logger: logger}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetOrderMatters(false)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("mqtt connected", slog.String("broker", cfg.BrokerURL))
		m.subscribe()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", slog.String("error", err.Error()))
	})
	m.client = mqtt.NewClient(opts)
	return m
}

// Connect dials the broker; subscriptions are (re)established on every
// successful connect once Start registered a handler.
func (m *MQTT) Connect(ctx context.Context) error {
	if m.client.IsConnected() {
		return nil
	}
	return m.wait(ctx, m.client.Connect(), m.cfg.ConnectTimeout, "connect to mqtt broker")
}

func (m *MQTT) Start(ctx context.Context, h Handler) error {
	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	m.handler = h
	if m.client.IsConnected() {
		m.subscribe()
		return nil
	}
	return m.Connect(ctx)
}

func (m *MQTT) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.client.Disconnect(250)
}

func (m *MQTT) Publish(ctx context.Context, topic string, payload []byte) error {
	return m.wait(ctx, m.client.Publish(topic, m.cfg.QoS, false, payload), m.cfg.PublishTimeout, "publish to "+topic)
}

func (m *MQTT) subscribe() {
	if m.handler == nil {
		return
	}
	filters := make(map[string]byte)
	for _, f := range m.topics.Subscriptions() {
		filters[f] = m.cfg.QoS
	}
	tok := m.client.SubscribeMultiple(filters, m.onMessage)
	go func() {
		if err := m.wait(m.ctx, tok, m.cfg.ConnectTimeout, "subscribe"); err != nil {
			m.logger.Error("mqtt subscribe failed", slog.String("error", err.Error()))
		}
	}()
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	if err := m.handler(m.ctx, msg.Topic(), msg.Payload()); err != nil {
		// QoS 1 has no negative ack; the device retries on its own timeout
		m.logger.Error("inbound message not queued",
			slog.String("topic", msg.Topic()), slog.String("error", err.Error()))
	}
}

func (m *MQTT) wait(ctx context.Context, tok mqtt.Token, timeout time.Duration, op string) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			return errs.Wrap(err, op)
		}
		return nil
	case <-timer.C:
		return errs.New(op + ": timed out")
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), op)
	}
}
