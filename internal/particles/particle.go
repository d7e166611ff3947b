package particles

import "math"

const (
	// StatesRadius is the particle radius used by the states of matter canvas.
	StatesRadius = 4.0
	// DiffusionRadius is the particle radius used by the diffusion canvas.
	DiffusionRadius = 3.0

	StatesCount    = 36
	DiffusionCount = 50

	gridSpacing     = 35.0
	statesSpeed     = 2.0
	diffusionSpeed  = 0.8
	liquidDamping   = 0.3
	liquidJitter    = 1.5
	solidVibration  = 1.5
	liquidRegion    = 0.8
	heavyMassFactor = 4.0

	ColorStates = "#3498db"
	ColorLight  = "#3498db"
	ColorHeavy  = "#e74c3c"
)

// Bounds is the drawing surface. The origin is the top-left corner.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Particle is a single point mass. BaseX/BaseY is the lattice site used by the
// solid regime; MassFactor is only meaningful for diffusion particles.
type Particle struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	VY         float64 `json:"vy"`
	BaseX      float64 `json:"base_x"`
	BaseY      float64 `json:"base_y"`
	Regime     Regime  `json:"regime"`
	MassFactor float64 `json:"mass_factor"`
	Color      string  `json:"color"`
}

// NewDiffusionParticle creates a diffusion particle whose speed is scaled by
// 1/sqrt(massFactor). A non-positive mass factor is treated as 1.
func NewDiffusionParticle(x, y, vx, vy float64, color string, massFactor float64) Particle {
	if massFactor <= 0 {
		massFactor = 1
	}
	speedMultiplier := 1 / math.Sqrt(massFactor)
	return Particle{
		X:          x,
		Y:          y,
		VX:         vx * speedMultiplier,
		VY:         vy * speedMultiplier,
		BaseX:      x,
		BaseY:      y,
		Regime:     Diffusion,
		MassFactor: massFactor,
		Color:      color,
	}
}

// Speed returns the magnitude of the particle velocity.
func (p Particle) Speed() float64 {
	return math.Hypot(p.VX, p.VY)
}

// Set is a particle set together with the surface it lives on. It is the whole
// simulation context: the engine keeps nothing between calls, so a Set can be
// stepped, copied or serialized by its owner.
type Set struct {
	Regime    Regime     `json:"regime"`
	Bounds    Bounds     `json:"bounds"`
	Radius    float64    `json:"radius"`
	Compare   bool       `json:"compare"`
	Started   bool       `json:"started"`
	Particles []Particle `json:"particles"`
}

// Start removes the diffusion barrier. From now on diffusion particles move
// freely across the midline.
func (s *Set) Start() {
	s.Started = true
}

// Barrier returns the x position of the diffusion barrier and whether it is
// still drawn. The barrier is a rendering concern only.
func (s *Set) Barrier() (float64, bool) {
	if s.Regime != Diffusion || s.Started {
		return 0, false
	}
	return s.Bounds.Width / 2, true
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	c := *s
	c.Particles = make([]Particle, len(s.Particles))
	copy(c.Particles, s.Particles)
	return &c
}

func (s *Set) minX() float64 { return s.Radius }
func (s *Set) minY() float64 { return s.Radius }
func (s *Set) maxX() float64 { return s.Bounds.Width - s.Radius }
func (s *Set) maxY() float64 { return s.Bounds.Height - s.Radius }

// DiffusionInfo is the caption shown under the diffusion canvas.
func DiffusionInfo(compare, started bool) string {
	switch {
	case started && compare:
		return "Observe mixing: Gas with lower Mr (blue) diffuses faster."
	case started:
		return "Observe diffusion: Particles spread out."
	case compare:
		return "Blue = Lower Mr Gas, Red = Higher Mr Gas. Click 'Start/Reset'."
	default:
		return "Click 'Start/Reset' to begin."
	}
}
