package simulation

import (
	"errors"
	"testing"
	"time"

	"github.com/stranger0g/NoteBase/internal/particles"
)

func TestManager_Create(t *testing.T) {
	m := NewManager()

	sim, err := m.Create("a", Config{Regime: particles.Liquid})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sim.ID() != "a" {
		t.Errorf("Expected ID 'a', got '%s'", sim.ID())
	}

	if _, err := m.Create("a", Config{Regime: particles.Gas}); !errors.Is(err, ErrExists) {
		t.Errorf("Expected ErrExists, got %v", err)
	}
	if _, err := m.Create("", Config{Regime: particles.Gas}); err == nil {
		t.Error("Expected error for empty ID")
	}

	tooMany := MaxParticles + 1
	_, err = m.Create("b", Config{Regime: particles.Gas, Count: &tooMany, Width: -1})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 2 {
		t.Errorf("Expected 2 issues, got %v", verr.Issues)
	}
	if _, ok := m.Get("b"); ok {
		t.Error("Expected invalid simulation not to be stored")
	}
}

func TestManager_GetListDelete(t *testing.T) {
	m := NewManager()
	for _, id := range []ID{"c", "a", "b"} {
		if _, err := m.Create(id, Config{Regime: particles.Solid}); err != nil {
			t.Fatal(err)
		}
	}

	ids := m.List()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("Expected sorted [a b c], got %v", ids)
	}

	sim, ok := m.Get("b")
	if !ok {
		t.Fatal("Expected to find b")
	}
	sim.Run(time.Millisecond)

	if err := m.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if sim.IsRunning() {
		t.Error("Expected deleted simulation to be stopped")
	}
	if _, ok := m.Get("b"); ok {
		t.Error("Expected b to be gone")
	}
	if err := m.Delete("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestManager_SeedIsReproducible(t *testing.T) {
	build := func() Frame {
		m := NewManager()
		m.SetSeed(99)
		sim, err := m.Create("g", Config{Regime: particles.Gas})
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 25; i++ {
			sim.Step()
		}
		return sim.Frame()
	}

	a, b := build(), build()
	for i := range a.Particles {
		if a.Particles[i] != b.Particles[i] {
			t.Fatalf("particle %d differs between seeded runs: %+v vs %+v", i, a.Particles[i], b.Particles[i])
		}
	}
}

func TestManager_SubscribeAll(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()
	mock := &mockNotifier{id: "audit"}
	nm.RegisterNotifier(mock)

	m := NewManager()
	m.SetNotificationManager(nm)
	existing, _ := m.Create("before", Config{Regime: particles.Gas})
	m.SubscribeAll("audit", EventCreated, EventDeleted)

	if subs := existing.Subscribers(); len(subs) != 1 || subs[0] != "audit" {
		t.Errorf("Expected existing simulation to be subscribed, got %v", subs)
	}

	if _, err := m.Create("after", Config{Regime: particles.Solid}); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete("after"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return len(mock.received()) == 2 })
	events := mock.received()
	if events[0].Kind != EventCreated || events[0].Frame == nil {
		t.Errorf("Expected created event with frame, got %+v", events[0])
	}
	if events[1].Kind != EventDeleted || events[1].SimulationID != "after" {
		t.Errorf("Expected deleted event for 'after', got %+v", events[1])
	}

	m.UnsubscribeAll("audit")
	if len(existing.Subscribers()) != 0 {
		t.Error("Expected subscription to be removed")
	}
}

func TestManager_StopAll(t *testing.T) {
	m := NewManager()
	a, _ := m.Create("a", Config{Regime: particles.Gas})
	b, _ := m.Create("b", Config{Regime: particles.Gas})
	a.Run(time.Millisecond)
	b.Run(time.Millisecond)

	m.StopAll()
	if a.IsRunning() || b.IsRunning() {
		t.Error("Expected all simulations to be stopped")
	}
}
