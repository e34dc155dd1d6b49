//go:build unit || e2e

package fake

import (
	"context"
	"errors"
	"sync"

	"garage-orchestrator/internal/usecase"

	"github.com/google/uuid"
)

type Capture struct {
	IntentID string
	Amount   int64
	Key      string
}

// Gateway is a scriptable card processor. Like the real one it refuses to
// capture an intent twice unless the idempotency key repeats.
type Gateway struct {
	mu        sync.Mutex
	Captures  []Capture
	Cancelled []string
	Links     []int64
	Holds     []usecase.HoldParams
	captured  map[string]string

	CaptureErr error
	HoldErr    error
	Webhook    *usecase.WebhookEvent
	WebhookErr error
	// AfterCapture runs after a successful capture, outside the lock.
	AfterCapture func()
	// HangCapture and HangLinks block the call until its context ends.
	HangCapture bool
	HangLinks   bool
}

func (g *Gateway) CreateCustomer(context.Context, usecase.CustomerParams) (string, error) {
	return "cus_" + uuid.NewString()[:8], nil
}

func (g *Gateway) AuthorizeHold(_ context.Context, p usecase.HoldParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.HoldErr != nil {
		return "", g.HoldErr
	}
	g.Holds = append(g.Holds, p)
	return "pi_" + uuid.NewString()[:8], nil
}

func (g *Gateway) Capture(ctx context.Context, intentID string, amount int64, key string) error {
	if g.HangCapture {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := g.capture(intentID, amount, key); err != nil {
		return err
	}
	if g.AfterCapture != nil {
		g.AfterCapture()
	}
	return nil
}

func (g *Gateway) capture(intentID string, amount int64, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CaptureErr != nil {
		return g.CaptureErr
	}
	if prev, ok := g.captured[intentID]; ok {
		if prev == key {
			return nil
		}
		return errors.New("payment_intent_unexpected_state: already captured")
	}
	if g.captured == nil {
		g.captured = map[string]string{}
	}
	g.captured[intentID] = key
	g.Captures = append(g.Captures, Capture{IntentID: intentID, Amount: amount, Key: key})
	return nil
}

func (g *Gateway) IntentState(_ context.Context, intentID string) (usecase.IntentState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.captured[intentID]; ok {
		return usecase.IntentCaptured, nil
	}
	for _, id := range g.Cancelled {
		if id == intentID {
			return usecase.IntentCancelled, nil
		}
	}
	return usecase.IntentHeld, nil
}

func (g *Gateway) Cancel(_ context.Context, intentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Cancelled = append(g.Cancelled, intentID)
	return nil
}

func (g *Gateway) CreatePaymentLink(ctx context.Context, _ string, amount int64, _ map[string]string) (string, error) {
	if g.HangLinks {
		<-ctx.Done()
		return "", ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Links = append(g.Links, amount)
	return "https://pay.example.com/link", nil
}

func (g *Gateway) ParseWebhook([]byte, string) (*usecase.WebhookEvent, error) {
	if g.WebhookErr != nil {
		return nil, g.WebhookErr
	}
	return g.Webhook, nil
}

type Message struct {
	To    string
	Title string
	Body  string
}

// Notifier records push and SMS messages.
type Notifier struct {
	mu     sync.Mutex
	Pushes []Message
	SMS    []Message
}

func (n *Notifier) Push(_ context.Context, token, title, body string, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Pushes = append(n.Pushes, Message{To: token, Title: title, Body: body})
	return nil
}

func (n *Notifier) Send(_ context.Context, phone, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.SMS = append(n.SMS, Message{To: phone, Body: body})
	return nil
}
