package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stranger0g/NoteBase/internal/particles"
)

// ErrSnapshotDirNotSet is returned by SaveSnapshot when no directory is configured.
var ErrSnapshotDirNotSet = errors.New("snapshot directory not configured")

// Snapshot is a point-in-time capture of a simulation.
type Snapshot struct {
	SimulationID ID             `json:"simulation_id"`
	Tick         int64          `json:"tick"`
	Temperature  float64        `json:"temperature"`
	Set          *particles.Set `json:"set"`
}

// ValidateSnapshot checks that a snapshot can be restored: the set exists,
// has a known regime and surface, and every particle lies on the surface.
func ValidateSnapshot(snapshot Snapshot) error {
	if snapshot.Tick < 0 {
		return fmt.Errorf("snapshot has negative tick %d", snapshot.Tick)
	}
	if err := validateTemperature(snapshot.Temperature); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	set := snapshot.Set
	if set == nil {
		return fmt.Errorf("snapshot has no particle set")
	}
	if !set.Regime.Valid() {
		return fmt.Errorf("snapshot has unknown regime %d", int(set.Regime))
	}
	if set.Bounds.Width <= 0 || set.Bounds.Height <= 0 {
		return fmt.Errorf("snapshot has invalid bounds %gx%g", set.Bounds.Width, set.Bounds.Height)
	}
	if len(set.Particles) > MaxParticles {
		return fmt.Errorf("snapshot has %d particles, limit is %d", len(set.Particles), MaxParticles)
	}
	for i, p := range set.Particles {
		if p.X < 0 || p.X > set.Bounds.Width || p.Y < 0 || p.Y > set.Bounds.Height {
			return fmt.Errorf("particle at index %d lies outside the surface", i)
		}
		if p.MassFactor <= 0 {
			return fmt.Errorf("particle at index %d has non-positive mass factor", i)
		}
	}
	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}

// Snapshot captures the current state
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		SimulationID: s.id,
		Tick:         s.tick,
		Temperature:  s.temperature,
		Set:          s.set.Clone(),
	}
}

// Restore replaces the state with a validated snapshot. The snapshot ID is
// not checked so a capture can seed a differently named simulation.
func (s *Simulation) Restore(snapshot Snapshot) error {
	if err := ValidateSnapshot(snapshot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = snapshot.Set.Clone()
	s.tick = snapshot.Tick
	s.temperature = snapshot.Temperature
	s.logger.Infof("Simulation restored: id=%s tick=%d", s.id, s.tick)
	s.emit(EventReset, true)
	return nil
}

// SetSnapshotDir sets the directory snapshots are written to
func (s *Simulation) SetSnapshotDir(dir string) {
	s.mu.Lock()
	s.snapshotDir = dir
	s.mu.Unlock()
}

// SnapshotPath returns <dir>/<id>.snapshot.json, or "" without a directory.
func (s *Simulation) SnapshotPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotPathLocked()
}

func (s *Simulation) snapshotPathLocked() string {
	if s.snapshotDir == "" {
		return ""
	}
	return filepath.Join(s.snapshotDir, string(s.id)+".snapshot.json")
}

// SaveSnapshot writes the current state to SnapshotPath. The file is written
// to a temporary name first and renamed into place.
func (s *Simulation) SaveSnapshot() error {
	snapshot := s.Snapshot()
	path := s.SnapshotPath()
	if path == "" {
		return ErrSnapshotDirNotSet
	}

	data, err := EncodeSnapshotJSON(snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	s.logger.Debugf("Snapshot saved: id=%s tick=%d path=%s", snapshot.SimulationID, snapshot.Tick, path)
	return nil
}

// LoadSnapshot reads and validates the snapshot file at path.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := DecodeSnapshotJSON(data)
	if err != nil {
		return Snapshot{}, err
	}
	if err := ValidateSnapshot(snapshot); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}
