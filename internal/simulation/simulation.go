// Package simulation hosts particle sets: it steps them on a ticker, streams
// frames to subscribed notifiers and persists them as JSON snapshots.
package simulation

import (
	"fmt"
	"sync"
	"time"

	"github.com/stranger0g/NoteBase/internal/particles"
)

// ID identifies a simulation
type ID string

// Frame is what a renderer needs to draw one tick.
type Frame struct {
	SimulationID ID                   `json:"simulation_id"`
	Tick         int64                `json:"tick"`
	Temperature  float64              `json:"temperature"`
	Regime       particles.Regime     `json:"regime"`
	Bounds       particles.Bounds     `json:"bounds"`
	Radius       float64              `json:"radius"`
	Compare      bool                 `json:"compare"`
	Started      bool                 `json:"started"`
	Barrier      *float64             `json:"barrier,omitempty"`
	Info         string               `json:"info,omitempty"`
	Particles    []particles.Particle `json:"particles"`
}

type subscription struct {
	notifierID string
	kinds      map[EventKind]bool
}

func (s subscription) wants(kind EventKind) bool {
	return len(s.kinds) == 0 || s.kinds[kind]
}

// Simulation owns one particle set and the clock that advances it.
type Simulation struct {
	mu          sync.RWMutex
	id          ID
	engine      *particles.Engine
	set         *particles.Set
	temperature float64
	tick        int64
	stopCh      chan struct{}
	isRunning   bool

	notifierMgr   *NotificationManager
	subscriptions []subscription
	snapshotDir   string
	logger        Logger
}

// New builds a simulation from a config. The config must already be valid.
func New(id ID, engine *particles.Engine, cfg Config) *Simulation {
	if engine == nil {
		engine = particles.NewEngine(nil)
	}
	return &Simulation{
		id:          id,
		engine:      engine,
		set:         engine.Init(cfg.Options()),
		temperature: cfg.InitialTemperature(),
		stopCh:      make(chan struct{}),
		logger:      NewNoOpLogger(),
	}
}

// ID returns the simulation ID
func (s *Simulation) ID() ID {
	return s.id
}

// SetLogger replaces the logger
func (s *Simulation) SetLogger(logger Logger) {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// SetNotificationManager sets where events are enqueued. Nil disables events.
func (s *Simulation) SetNotificationManager(nm *NotificationManager) {
	s.mu.Lock()
	s.notifierMgr = nm
	s.mu.Unlock()
}

// Subscribe routes events of the given kinds to a notifier. No kinds means all.
// Subscribing again replaces the earlier kinds.
func (s *Simulation) Subscribe(notifierID string, kinds ...EventKind) {
	s.subscribe(newSubscription(notifierID, kinds))
}

func newSubscription(notifierID string, kinds []EventKind) subscription {
	sub := subscription{notifierID: notifierID}
	if len(kinds) > 0 {
		sub.kinds = make(map[EventKind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}
	return sub
}

func (s *Simulation) subscribe(sub subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.subscriptions {
		if existing.notifierID == sub.notifierID {
			s.subscriptions[i] = sub
			return
		}
	}
	s.subscriptions = append(s.subscriptions, sub)
}

// Unsubscribe stops routing events to a notifier
func (s *Simulation) Unsubscribe(notifierID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.subscriptions[:0]
	for _, sub := range s.subscriptions {
		if sub.notifierID != notifierID {
			out = append(out, sub)
		}
	}
	s.subscriptions = out
}

// Subscribers returns the notifier IDs subscribed to this simulation
func (s *Simulation) Subscribers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.subscriptions))
	for i, sub := range s.subscriptions {
		ids[i] = sub.notifierID
	}
	return ids
}

// emit must be called with s.mu held (read or write).
func (s *Simulation) emit(kind EventKind, withFrame bool) {
	if s.notifierMgr == nil || len(s.subscriptions) == 0 {
		return
	}
	var ids []string
	for _, sub := range s.subscriptions {
		if sub.wants(kind) {
			ids = append(ids, sub.notifierID)
		}
	}
	if len(ids) == 0 {
		return
	}
	event := Event{
		SimulationID: s.id,
		Kind:         kind,
		Tick:         s.tick,
		Timestamp:    time.Now().Unix(),
	}
	if withFrame {
		f := s.frameLocked()
		event.Frame = &f
	}
	s.notifierMgr.Enqueue(event, ids)
}

// Step advances the set by one tick at the current temperature.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepLocked()
}

func (s *Simulation) stepLocked() {
	s.engine.Step(s.set, particles.IntensityFromTemperature(s.temperature))
	s.tick++
	s.emit(EventFrame, true)
}

// scheduledStep steps only while the run that owns stopCh is still current,
// so a tick racing with Stop is discarded.
func (s *Simulation) scheduledStep(stopCh chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning || s.stopCh != stopCh {
		return
	}
	s.stepLocked()
}

// Run starts a ticker goroutine that calls Step every interval until Stop.
// It can be called again after Stop.
func (s *Simulation) Run(interval time.Duration) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.isRunning = true
	s.logger.Infof("Simulation started: id=%s interval=%v", s.id, interval)
	s.emit(EventStarted, false)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.scheduledStep(stopCh)
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop halts the ticker goroutine. It is a no-op when not running.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	close(s.stopCh)
	s.isRunning = false
	s.logger.Infof("Simulation stopped: id=%s tick=%d", s.id, s.tick)
	s.emit(EventStopped, false)
}

// IsRunning reports whether the ticker goroutine is active
func (s *Simulation) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Reset replaces the particle set with a fresh one built from cfg and rewinds
// the tick counter. A running simulation keeps running on the new set.
func (s *Simulation) Reset(cfg Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// the engine's random source is shared with the ticker goroutine
	set := s.engine.Init(cfg.Options())
	s.set = set
	s.tick = 0
	s.temperature = cfg.InitialTemperature()
	s.logger.Debugf("Simulation reset: id=%s regime=%s count=%d", s.id, set.Regime, len(set.Particles))
	s.emit(EventReset, true)
	return nil
}

// SetTemperature changes the slider value used by subsequent steps.
func (s *Simulation) SetTemperature(t float64) error {
	if err := validateTemperature(t); err != nil {
		return err
	}
	s.mu.Lock()
	s.temperature = t
	s.mu.Unlock()
	return nil
}

// Temperature returns the current slider value
func (s *Simulation) Temperature() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.temperature
}

// Tick returns the number of steps taken since the last reset
func (s *Simulation) Tick() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tick
}

// StartDiffusion lifts the barrier of a diffusion set.
func (s *Simulation) StartDiffusion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.Regime != particles.Diffusion {
		return fmt.Errorf("simulation %s is not a diffusion simulation (regime %s)", s.id, s.set.Regime)
	}
	if s.set.Started {
		return nil
	}
	s.set.Start()
	s.emit(EventDiffusionStarted, false)
	return nil
}

// Frame returns a copy of the current state for rendering
func (s *Simulation) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameLocked()
}

func (s *Simulation) frameLocked() Frame {
	set := s.set.Clone()
	f := Frame{
		SimulationID: s.id,
		Tick:         s.tick,
		Temperature:  s.temperature,
		Regime:       set.Regime,
		Bounds:       set.Bounds,
		Radius:       set.Radius,
		Compare:      set.Compare,
		Started:      set.Started,
		Particles:    set.Particles,
	}
	if x, ok := set.Barrier(); ok {
		f.Barrier = &x
	}
	if set.Regime == particles.Diffusion {
		f.Info = particles.DiffusionInfo(set.Compare, set.Started)
	}
	return f
}

// Stats summarizes the current set
func (s *Simulation) Stats() particles.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return particles.Summarize(s.set)
}
