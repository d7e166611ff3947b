package particles

import (
	"fmt"
	"math"
)

// Options describes the particle set to build.
type Options struct {
	Regime  Regime
	Count   int
	Compare bool
	Bounds  Bounds
	// Radius is the particle radius; zero selects the regime default.
	Radius float64
}

// DefaultOptions returns the canvas defaults for the given regime on the given surface.
func DefaultOptions(r Regime, b Bounds) Options {
	opts := Options{Regime: r, Bounds: b, Count: StatesCount, Radius: StatesRadius}
	if r == Diffusion {
		opts.Count = DiffusionCount
		opts.Radius = DiffusionRadius
	}
	return opts
}

// Engine applies construction and motion rules. It holds no per-set state;
// everything that changes lives in the Set passed to it.
type Engine struct {
	rng Random
}

// NewEngine creates an engine drawing random numbers from rng.
// A nil rng selects a time-seeded generator.
func NewEngine(rng Random) *Engine {
	if rng == nil {
		rng = NewTimeSeededRandom()
	}
	return &Engine{rng: rng}
}

// Init builds a fresh particle set. It panics on a negative count or an unknown regime.
func (e *Engine) Init(opts Options) *Set {
	if opts.Count < 0 {
		panic(fmt.Sprintf("particles: negative particle count %d", opts.Count))
	}
	if !opts.Regime.Valid() {
		panic(fmt.Sprintf("particles: unknown regime %d", int(opts.Regime)))
	}

	radius := opts.Radius
	if radius == 0 {
		radius = StatesRadius
		if opts.Regime == Diffusion {
			radius = DiffusionRadius
		}
	}

	set := &Set{
		Regime:    opts.Regime,
		Bounds:    opts.Bounds,
		Radius:    radius,
		Compare:   opts.Compare && opts.Regime == Diffusion,
		Particles: make([]Particle, 0, opts.Count),
	}
	if opts.Count == 0 || opts.Bounds.Width <= 0 || opts.Bounds.Height <= 0 {
		return set
	}

	switch opts.Regime {
	case Solid:
		e.initSolid(set, opts.Count)
	case Liquid:
		e.initLiquid(set, opts.Count)
	case Gas:
		e.initGas(set, opts.Count)
	case Diffusion:
		e.initDiffusion(set, opts.Count)
	}
	return set
}

func (e *Engine) initSolid(set *Set, n int) {
	rows := int(math.Floor(math.Sqrt(float64(n))))
	cols := int(math.Ceil(float64(n) / float64(rows)))
	startX := (set.Bounds.Width - float64(cols-1)*gridSpacing) / 2
	startY := (set.Bounds.Height - float64(rows-1)*gridSpacing) / 2

	for i := 0; i < n; i++ {
		row, col := i/cols, i%cols
		x := startX + float64(col)*gridSpacing
		y := startY + float64(row)*gridSpacing
		set.Particles = append(set.Particles, Particle{
			X: x, Y: y, BaseX: x, BaseY: y,
			Regime: Solid, MassFactor: 1, Color: ColorStates,
		})
	}
}

func (e *Engine) initLiquid(set *Set, n int) {
	w, h, r := set.Bounds.Width, set.Bounds.Height, set.Radius
	for i := 0; i < n; i++ {
		x := e.rng.Float64()*(w*liquidRegion-2*r) + w*(1-liquidRegion)/2 + r
		y := e.rng.Float64()*(h*liquidRegion-2*r) + h*(1-liquidRegion)/2 + r
		vx := (e.rng.Float64() - 0.5) * statesSpeed * 0.5
		vy := (e.rng.Float64() - 0.5) * statesSpeed * 0.5
		set.Particles = append(set.Particles, Particle{
			X: x, Y: y, VX: vx, VY: vy, BaseX: x, BaseY: y,
			Regime: Liquid, MassFactor: 1, Color: ColorStates,
		})
	}
}

func (e *Engine) initGas(set *Set, n int) {
	w, h, r := set.Bounds.Width, set.Bounds.Height, set.Radius
	for i := 0; i < n; i++ {
		x := e.rng.Float64()*(w-2*r) + r
		y := e.rng.Float64()*(h-2*r) + r
		vx := (e.rng.Float64() - 0.5) * statesSpeed
		vy := (e.rng.Float64() - 0.5) * statesSpeed
		set.Particles = append(set.Particles, Particle{
			X: x, Y: y, VX: vx, VY: vy, BaseX: x, BaseY: y,
			Regime: Gas, MassFactor: 1, Color: ColorStates,
		})
	}
}

func (e *Engine) initDiffusion(set *Set, n int) {
	left := n
	lightColor := ColorHeavy
	if set.Compare {
		left = n / 2
		lightColor = ColorLight
	}
	for i := 0; i < left; i++ {
		set.Particles = append(set.Particles, e.diffusionParticle(set, 0, lightColor, 1))
	}
	if set.Compare {
		for i := 0; i < n-left; i++ {
			set.Particles = append(set.Particles, e.diffusionParticle(set, set.Bounds.Width/2, ColorHeavy, heavyMassFactor))
		}
	}
}

func (e *Engine) diffusionParticle(set *Set, offsetX float64, color string, massFactor float64) Particle {
	w, h, r := set.Bounds.Width, set.Bounds.Height, set.Radius
	x := e.rng.Float64()*(w/2-2*r) + r + offsetX
	y := e.rng.Float64()*(h-2*r) + r
	vx := (e.rng.Float64() - 0.5) * diffusionSpeed
	vy := (e.rng.Float64() - 0.5) * diffusionSpeed
	return NewDiffusionParticle(x, y, vx, vy, color, massFactor)
}

// Step advances every particle in the set by one frame at the given intensity.
// Diffusion sets stay frozen until Start has been called.
func (e *Engine) Step(set *Set, intensity float64) {
	switch set.Regime {
	case Solid:
		for i := range set.Particles {
			e.stepSolid(set, &set.Particles[i], intensity)
		}
	case Liquid:
		for i := range set.Particles {
			e.stepLiquid(set, &set.Particles[i], intensity)
		}
	case Gas:
		for i := range set.Particles {
			stepBallistic(set, &set.Particles[i], intensity)
		}
	case Diffusion:
		if !set.Started {
			return
		}
		for i := range set.Particles {
			stepBallistic(set, &set.Particles[i], intensity)
		}
	default:
		panic(fmt.Sprintf("particles: unknown regime %d", int(set.Regime)))
	}
}

// reflect negates the velocity on each axis whose naive next position would
// leave the inset bounds and reports which axes were reflected.
func reflect(set *Set, p *Particle, k float64) (hitX, hitY bool) {
	nextX := p.X + p.VX*k
	nextY := p.Y + p.VY*k
	if nextX > set.maxX() || nextX < set.minX() {
		p.VX = -p.VX
		hitX = true
	}
	if nextY > set.maxY() || nextY < set.minY() {
		p.VY = -p.VY
		hitY = true
	}
	return hitX, hitY
}

func stepBallistic(set *Set, p *Particle, k float64) {
	hitX, hitY := reflect(set, p, k)
	if !hitX {
		p.X += p.VX * k
	}
	if !hitY {
		p.Y += p.VY * k
	}
}

func (e *Engine) stepLiquid(set *Set, p *Particle, k float64) {
	reflect(set, p, k)
	p.X += p.VX*k*liquidDamping + (e.rng.Float64()-0.5)*liquidJitter
	p.Y += p.VY*k*liquidDamping + (e.rng.Float64()-0.5)*liquidJitter
	clampInto(set, p)
}

func (e *Engine) stepSolid(set *Set, p *Particle, k float64) {
	vibration := solidVibration * k
	p.X = p.BaseX + (e.rng.Float64()-0.5)*vibration
	p.Y = p.BaseY + (e.rng.Float64()-0.5)*vibration
	clampInto(set, p)
}

func clampInto(set *Set, p *Particle) {
	p.X = clamp(p.X, set.minX(), set.maxX())
	p.Y = clamp(p.Y, set.minY(), set.maxY())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
