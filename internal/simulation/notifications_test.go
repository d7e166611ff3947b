package simulation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}
	if len(nm.ListNotifiers()) != 0 {
		t.Errorf("Expected empty notifiers list, got %d", len(nm.ListNotifiers()))
	}
	if err := nm.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	// second close is a no-op
	if err := nm.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}
}

func TestNotificationManager_RegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.RegisterNotifier(&mockNotifier{id: "test-1"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := nm.RegisterNotifier(&mockNotifier{id: "test-1"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}
	if err := nm.RegisterNotifier(nil); err == nil {
		t.Error("Expected error for nil notifier")
	}
	if err := nm.RegisterNotifier(&mockNotifier{id: ""}); err == nil {
		t.Error("Expected error for empty ID")
	}

	nm.RegisterNotifier(&mockNotifier{id: "test-2"})
	if len(nm.ListNotifiers()) != 2 {
		t.Errorf("Expected 2 notifiers, got %d", len(nm.ListNotifiers()))
	}
	if n, ok := nm.GetNotifier("test-2"); !ok || n.Type() != "mock" {
		t.Error("Expected to find test-2")
	}
}

func TestNotificationManager_UnregisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.UnregisterNotifier("missing"); err == nil {
		t.Error("Expected error for non-existent notifier")
	}

	closed := false
	nm.RegisterNotifier(&mockNotifier{id: "n", closeFunc: func() error { closed = true; return nil }})
	if err := nm.UnregisterNotifier("n"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !closed {
		t.Error("Expected notifier to be closed on unregister")
	}
	if _, ok := nm.GetNotifier("n"); ok {
		t.Error("Expected notifier to be gone")
	}
}

func TestNotificationManager_EnqueueDelivers(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	a := &mockNotifier{id: "a"}
	b := &mockNotifier{id: "b"}
	nm.RegisterNotifier(a)
	nm.RegisterNotifier(b)

	nm.Enqueue(Event{SimulationID: "sim", Kind: EventStarted, Tick: 4}, []string{"a", "b"})
	nm.Enqueue(Event{SimulationID: "sim", Kind: EventStopped}, nil)

	waitFor(t, func() bool { return len(a.received()) == 1 && len(b.received()) == 1 })
	if got := a.received()[0]; got.Kind != EventStarted || got.Tick != 4 {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestNotificationManager_Retry(t *testing.T) {
	nm := NewNotificationManager()
	nm.backoff = time.Millisecond
	defer nm.Close()

	failures := 2
	flaky := &mockNotifier{id: "flaky"}
	flaky.notifyFunc = func(context.Context, Event) error {
		if flaky.callCount() <= failures {
			return errors.New("temporary failure")
		}
		return nil
	}
	nm.RegisterNotifier(flaky)

	nm.Enqueue(Event{SimulationID: "sim", Kind: EventFrame}, []string{"flaky"})

	waitFor(t, func() bool { return len(flaky.received()) == 1 })
	if flaky.callCount() != 3 {
		t.Errorf("Expected 3 attempts, got %d", flaky.callCount())
	}
}

func TestNotificationManager_RetryGivesUp(t *testing.T) {
	nm := NewNotificationManager()
	nm.backoff = time.Millisecond
	defer nm.Close()

	broken := &mockNotifier{id: "broken", notifyFunc: func(context.Context, Event) error {
		return errors.New("down")
	}}
	nm.RegisterNotifier(broken)

	nm.Enqueue(Event{Kind: EventFrame}, []string{"broken"})

	waitFor(t, func() bool { return broken.callCount() == maxRetries+1 })
	time.Sleep(20 * time.Millisecond)
	if broken.callCount() != maxRetries+1 {
		t.Errorf("Expected %d attempts, got %d", maxRetries+1, broken.callCount())
	}
}

func TestNotificationManager_DropsWhenFull(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	release := make(chan struct{})
	slow := &mockNotifier{id: "slow", notifyFunc: func(context.Context, Event) error {
		<-release
		return nil
	}}
	nm.RegisterNotifier(slow)

	// one job is held by the worker, the rest fill the queue
	for i := 0; i < queueSize+10; i++ {
		nm.Enqueue(Event{Kind: EventFrame, Tick: int64(i)}, []string{"slow"})
	}
	close(release)

	waitFor(t, func() bool { return len(nm.jobs) == 0 })
	time.Sleep(20 * time.Millisecond)
	got := len(slow.received())
	if got > queueSize+1 {
		t.Errorf("Expected at most %d deliveries, got %d", queueSize+1, got)
	}
	if got < queueSize {
		t.Errorf("Expected the queue to be drained, got %d deliveries", got)
	}
}

func TestNotificationManager_EnqueueAfterClose(t *testing.T) {
	nm := NewNotificationManager()
	nm.Close()

	// must not panic on the closed channel
	nm.Enqueue(Event{Kind: EventFrame}, []string{"any"})
}

func TestNotificationManager_NotifySync(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	ok := &mockNotifier{id: "ok"}
	bad := &mockNotifier{id: "bad", notifyFunc: func(context.Context, Event) error { return errors.New("nope") }}
	nm.RegisterNotifier(ok)
	nm.RegisterNotifier(bad)

	if err := nm.Notify(context.Background(), Event{Kind: EventCreated}, []string{"ok"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := nm.Notify(context.Background(), Event{Kind: EventCreated}, []string{"ok", "bad", "missing"}); err == nil {
		t.Error("Expected aggregated error")
	}
	if len(ok.received()) != 2 {
		t.Errorf("Expected 2 deliveries to ok, got %d", len(ok.received()))
	}
}

func TestNotificationManager_CloseClosesNotifiers(t *testing.T) {
	nm := NewNotificationManager()
	closed := 0
	for _, id := range []string{"a", "b"} {
		nm.RegisterNotifier(&mockNotifier{id: id, closeFunc: func() error { closed++; return nil }})
	}
	if err := nm.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed != 2 {
		t.Errorf("Expected 2 notifiers closed, got %d", closed)
	}
}

func TestEvent_JSON(t *testing.T) {
	data, err := Event{SimulationID: "s", Kind: EventStopped, Tick: 3, Timestamp: 10}.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	want := `{"simulation_id":"s","kind":"stopped","tick":3,"timestamp":10}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}
