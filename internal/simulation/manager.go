package simulation

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/stranger0g/NoteBase/internal/particles"
)

var (
	ErrExists   = errors.New("simulation already exists")
	ErrNotFound = errors.New("simulation not found")
)

// Manager keeps simulations isolated from each other by ID.
type Manager struct {
	mu          sync.RWMutex
	simulations map[ID]*Simulation
	newEngine   func() *particles.Engine
	notifierMgr *NotificationManager
	snapshotDir string
	defaultSubs []subscription
	logger      Logger
}

// NewManager creates a manager whose simulations draw time-seeded randomness
func NewManager() *Manager {
	return NewManagerWithLogger(nil)
}

// NewManagerWithLogger creates a manager that passes logger to its simulations
func NewManagerWithLogger(logger Logger) *Manager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Manager{
		simulations: make(map[ID]*Simulation),
		newEngine:   func() *particles.Engine { return particles.NewEngine(nil) },
		logger:      logger,
	}
}

// SetSeed makes every simulation created from now on reproducible. Each
// simulation gets its own generator seeded with seed.
func (m *Manager) SetSeed(seed uint64) {
	m.mu.Lock()
	m.newEngine = func() *particles.Engine {
		return particles.NewEngine(particles.NewRandom(seed))
	}
	m.mu.Unlock()
}

// SetNotificationManager attaches nm to current and future simulations
func (m *Manager) SetNotificationManager(nm *NotificationManager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifierMgr = nm
	for _, sim := range m.simulations {
		sim.SetNotificationManager(nm)
	}
}

// SetSnapshotDir sets the snapshot directory for current and future simulations
func (m *Manager) SetSnapshotDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotDir = dir
	for _, sim := range m.simulations {
		sim.SetSnapshotDir(dir)
	}
}

// SubscribeAll routes events of the given kinds from every current and
// future simulation to a notifier. No kinds means all.
func (m *Manager) SubscribeAll(notifierID string, kinds ...EventKind) {
	sub := newSubscription(notifierID, kinds)
	m.mu.Lock()
	defer m.mu.Unlock()
	replaced := false
	for i, existing := range m.defaultSubs {
		if existing.notifierID == notifierID {
			m.defaultSubs[i] = sub
			replaced = true
		}
	}
	if !replaced {
		m.defaultSubs = append(m.defaultSubs, sub)
	}
	for _, sim := range m.simulations {
		sim.subscribe(sub)
	}
}

// UnsubscribeAll removes a notifier from every simulation
func (m *Manager) UnsubscribeAll(notifierID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.defaultSubs[:0]
	for _, sub := range m.defaultSubs {
		if sub.notifierID != notifierID {
			out = append(out, sub)
		}
	}
	m.defaultSubs = out
	for _, sim := range m.simulations {
		sim.Unsubscribe(notifierID)
	}
}

// Create validates cfg and adds a new simulation under id.
func (m *Manager) Create(id ID, cfg Config) (*Simulation, error) {
	if id == "" {
		return nil, fmt.Errorf("simulation ID cannot be empty")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.simulations[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrExists, id)
	}

	sim := New(id, m.newEngine(), cfg)
	sim.SetLogger(m.logger)
	sim.SetNotificationManager(m.notifierMgr)
	sim.SetSnapshotDir(m.snapshotDir)
	for _, sub := range m.defaultSubs {
		sim.subscribe(sub)
	}
	m.simulations[id] = sim

	sim.mu.RLock()
	sim.emit(EventCreated, true)
	sim.mu.RUnlock()

	m.logger.Infof("Simulation created: id=%s regime=%s", id, cfg.Regime)
	return sim, nil
}

// Get retrieves a simulation by ID
func (m *Manager) Get(id ID) (*Simulation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sim, exists := m.simulations[id]
	return sim, exists
}

// Delete stops and removes a simulation
func (m *Manager) Delete(id ID) error {
	m.mu.Lock()
	sim, exists := m.simulations[id]
	if exists {
		delete(m.simulations, id)
	}
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sim.Stop()
	sim.mu.RLock()
	sim.emit(EventDeleted, false)
	sim.mu.RUnlock()
	m.logger.Infof("Simulation deleted: id=%s", id)
	return nil
}

// List returns all simulation IDs in lexical order
func (m *Manager) List() []ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]ID, 0, len(m.simulations))
	for id := range m.simulations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Restore creates the simulation named in a snapshot, or overwrites it when it exists.
func (m *Manager) Restore(snapshot Snapshot) (*Simulation, error) {
	if snapshot.SimulationID == "" {
		return nil, fmt.Errorf("snapshot has no simulation ID")
	}
	if err := ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}

	sim, exists := m.Get(snapshot.SimulationID)
	if !exists {
		var err error
		sim, err = m.Create(snapshot.SimulationID, Config{Regime: snapshot.Set.Regime, Count: new(int)})
		if err != nil && !errors.Is(err, ErrExists) {
			return nil, err
		}
		if err != nil {
			sim, _ = m.Get(snapshot.SimulationID)
		}
	}
	if err := sim.Restore(snapshot); err != nil {
		return nil, err
	}
	return sim, nil
}

// StopAll halts every running simulation
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sim := range m.simulations {
		sim.Stop()
	}
}
