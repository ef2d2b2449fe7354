package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WebhookNotifier delivers critical-item alerts by POSTing them to a
// configured webhook endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	UserID int    `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Notify posts the alert to the webhook
func (n *WebhookNotifier) Notify(ctx context.Context, userID int, title, body string) error {
	payload, err := json.Marshal(webhookPayload{
		UserID: userID,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// LogNotifier writes alerts to the server log. Used when no webhook is
// configured so the scheduler can still run its check pass.
type LogNotifier struct{}

// Notify logs the alert
func (LogNotifier) Notify(ctx context.Context, userID int, title, body string) error {
	log.Printf("notification for user %d: %s - %s", userID, title, body)
	return nil
}
