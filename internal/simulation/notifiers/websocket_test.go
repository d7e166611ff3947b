package notifiers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stranger0g/NoteBase/internal/simulation"
)

func TestNewWebSocketNotifier(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	if notifier.ID() != "ws-1" {
		t.Errorf("Expected ID 'ws-1', got '%s'", notifier.ID())
	}
	if notifier.Type() != "websocket" {
		t.Errorf("Expected type 'websocket', got '%s'", notifier.Type())
	}
	if notifier.ClientCount() != 0 {
		t.Errorf("Expected no clients, got %d", notifier.ClientCount())
	}
}

func TestWebSocketNotifier_NotifyWithoutClients(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	defer notifier.Close()

	if err := notifier.Notify(context.Background(), simulation.Event{Kind: simulation.EventFrame}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestWebSocketNotifier_NotifyAfterClose(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	if err := notifier.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := notifier.Notify(context.Background(), simulation.Event{}); err == nil {
		t.Error("Expected error notifying a closed notifier")
	}
}

func TestWebSocketNotifier_Stream(t *testing.T) {
	notifier := NewWebSocketNotifier("ws")
	defer notifier.Close()

	server := httptest.NewServer(notifier)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for notifier.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if notifier.ClientCount() != 1 {
		t.Fatalf("Expected 1 client, got %d", notifier.ClientCount())
	}

	event := simulation.Event{SimulationID: "sim", Kind: simulation.EventFrame, Tick: 9}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var got simulation.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if got.SimulationID != "sim" || got.Tick != 9 || got.Kind != simulation.EventFrame {
		t.Errorf("unexpected event %+v", got)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for notifier.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if notifier.ClientCount() != 0 {
		t.Errorf("Expected client to be removed after disconnect, got %d", notifier.ClientCount())
	}
}
