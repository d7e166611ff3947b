package particles

import (
	"time"

	"golang.org/x/exp/rand"
)

// Random is the source of uniform draws in [0, 1) used by the engine.
type Random interface {
	Float64() float64
}

// NewRandom returns a PCG-backed generator seeded with seed. The same seed
// always produces the same particle trajectories.
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSeededRandom returns a generator seeded from the wall clock.
func NewTimeSeededRandom() Random {
	return NewRandom(uint64(time.Now().UnixNano()))
}
