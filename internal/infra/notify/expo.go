// Package notify delivers push notifications through Expo and SMS through
// Twilio.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"
)

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Expo sends push notifications to Expo push tokens.
type Expo struct {
	url    string
	client *http.Client
}

func NewExpo(cfg config.NotifyConfig) *Expo {
	timeout := cfg.PushTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Expo{url: cfg.ExpoPushURL, client: &http.Client{Timeout: timeout}}
}

func (e *Expo) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal([]expoMessage{{To: token, Title: title, Body: body, Data: data, Sound: "default"}})
	if err != nil {
		return errs.Wrap(err, "encode push message")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return errs.Wrap(err, "send push request")
	}
	defer resp.Body.Close()

	var out expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return errs.Wrap(err, fmt.Sprintf("decode push response (status %d)", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusBadRequest || len(out.Errors) > 0 {
		msg := http.StatusText(resp.StatusCode)
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return errs.New("push rejected: " + msg)
	}
	for _, t := range out.Data {
		if t.Status == "error" {
			return errs.New("push ticket error: " + t.Message)
		}
	}
	return nil
}
