package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stranger0g/NoteBase/internal/simulation"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	var received simulation.Event
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	wh := NewWebhookNotifier("hook", server.URL)
	wh.SetHeader("Authorization", "Bearer token")

	if wh.ID() != "hook" || wh.Type() != "webhook" || wh.URL() != server.URL {
		t.Errorf("unexpected notifier identity %s/%s/%s", wh.ID(), wh.Type(), wh.URL())
	}

	event := simulation.Event{SimulationID: "sim", Kind: simulation.EventStarted, Tick: 2}
	if err := wh.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if received.SimulationID != "sim" || received.Kind != simulation.EventStarted {
		t.Errorf("unexpected body %+v", received)
	}
	if headers.Get("Authorization") != "Bearer token" {
		t.Errorf("Expected custom header, got %q", headers.Get("Authorization"))
	}
	if headers.Get("X-Simulation-Event") != "started" {
		t.Errorf("Expected event kind header, got %q", headers.Get("X-Simulation-Event"))
	}
	if headers.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", headers.Get("Content-Type"))
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	wh := NewWebhookNotifier("hook", server.URL)
	if err := wh.Notify(context.Background(), simulation.Event{}); err == nil {
		t.Error("Expected error for 502 response")
	}
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	wh := NewWebhookNotifier("hook", "http://127.0.0.1:1/unreachable")
	if err := wh.Notify(context.Background(), simulation.Event{}); err == nil {
		t.Error("Expected error for unreachable URL")
	}
	if err := wh.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
