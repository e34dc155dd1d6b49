//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/infra/bus"

	"github.com/stretchr/testify/require"
)

// Loopback stands in for the device broker: tests publish device messages
// into the subscribed router and read back what the service published.
type Loopback struct {
	mu        sync.Mutex
	handler   bus.Handler
	published map[string][][]byte
}

func NewLoopback() *Loopback {
	return &Loopback{published: map[string][][]byte{}}
}

func (l *Loopback) Start(_ context.Context, h bus.Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
	return nil
}

func (l *Loopback) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = nil
}

func (l *Loopback) Publish(_ context.Context, topic string, payload []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.published[topic] = append(l.published[topic], append([]byte(nil), payload...))
	return nil
}

// Send delivers a device message as the broker would.
func (l *Loopback) Send(t *testing.T, topic string, msg any) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)

	l.mu.Lock()
	h := l.handler
	l.mu.Unlock()
	require.NotNil(t, h, "device bus not subscribed")
	require.NoError(t, h(context.Background(), topic, payload))
}

// Reset drops everything published so far.
func (l *Loopback) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.published = map[string][][]byte{}
}

// AwaitResponse waits for the gate response carrying requestID.
func (l *Loopback) AwaitResponse(t *testing.T, topic, requestID string) decision.GateResponse {
	t.Helper()
	var found decision.GateResponse
	require.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		for _, raw := range l.published[topic] {
			var resp decision.GateResponse
			if json.Unmarshal(raw, &resp) == nil && resp.RequestID == requestID {
				found = resp
				return true
			}
		}
		return false
	}, 10*time.Second, 50*time.Millisecond, "no gate response for request %s", requestID)
	return found
}
