package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"yamor-backend/config"
)

// PushSender defines the interface for delivering one text message to the
// caregiver channel.
type PushSender interface {
	Send(ctx context.Context, token, recipientID, text string) (*http.Response, error)
}

// LineSender is the real PushSender against the LINE Messaging API push
// endpoint.
type LineSender struct {
	endpoint string
	client   *http.Client
}

// NewLineSender creates a sender for the configured push endpoint.
func NewLineSender(cfg *config.PushConfig) *LineSender {
	return &LineSender{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

// Send posts one text message with bearer-token authorization.
func (s *LineSender) Send(ctx context.Context, token, recipientID, text string) (*http.Response, error) {
	jsonBody, err := json.Marshal(pushRequest{
		To:       recipientID,
		Messages: []pushMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return s.client.Do(req)
}

// Notify sends one message and reports (ok, detail). Transport errors and
// non-2xx statuses are reported in the detail string, never returned as an
// error: notification failure must not fail the action that triggered it.
func Notify(ctx context.Context, sender PushSender, token, recipientID, text string) (bool, string) {
	resp, err := sender.Send(ctx, token, recipientID, text)
	if err != nil {
		return false, fmt.Sprintf("push request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Sprintf("push endpoint returned %d: %s", resp.StatusCode, body)
	}
	return true, "caregiver notified"
}
