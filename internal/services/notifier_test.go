package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookNotifierPostsAlert(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.Notify(context.Background(), 7, "Homestock Reminder", "You have 2 low stock items. Check your inventory!")
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if got.UserID != 7 || got.Title != "Homestock Reminder" {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestWebhookNotifierRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	if err := notifier.Notify(context.Background(), 7, "t", "b"); err == nil {
		t.Error("expected error for non-2xx response")
	}
}
