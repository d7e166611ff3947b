package simulation

import (
	"fmt"
	"strings"

	"github.com/stranger0g/NoteBase/internal/particles"
)

const (
	DefaultWidth  = 400
	DefaultHeight = 250

	MaxParticles = 1000
	MaxDimension = 4000

	MinTemperature = 1
	MaxTemperature = 10
)

// Config is the JSON body accepted when a simulation is created or reset.
// Nil and zero fields select the regime defaults.
type Config struct {
	Regime      particles.Regime `json:"regime"`
	Count       *int             `json:"count,omitempty"`
	Compare     bool             `json:"compare,omitempty"`
	Width       float64          `json:"width,omitempty"`
	Height      float64          `json:"height,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

// Options resolves the config into engine options.
func (c Config) Options() particles.Options {
	b := particles.Bounds{Width: c.Width, Height: c.Height}
	if b.Width == 0 {
		b.Width = DefaultWidth
	}
	if b.Height == 0 {
		b.Height = DefaultHeight
	}
	opts := particles.DefaultOptions(c.Regime, b)
	if c.Count != nil {
		opts.Count = *c.Count
	}
	opts.Compare = c.Compare
	return opts
}

// InitialTemperature is the slider value a new set starts at.
func (c Config) InitialTemperature() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return particles.DefaultTemperature(c.Regime)
}

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid simulation config: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "simulation config errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateConfig checks a config before it reaches the engine, which panics
// on counts and regimes it cannot build.
func ValidateConfig(cfg Config) error {
	err := &ValidationError{}

	if !cfg.Regime.Valid() {
		err.Add(fmt.Sprintf("unknown regime %d", int(cfg.Regime)))
	}
	if cfg.Count != nil && (*cfg.Count < 0 || *cfg.Count > MaxParticles) {
		err.Add(fmt.Sprintf("count must be between 0 and %d, got %d", MaxParticles, *cfg.Count))
	}
	if cfg.Width < 0 || cfg.Width > MaxDimension {
		err.Add(fmt.Sprintf("width must be between 0 and %d", MaxDimension))
	}
	if cfg.Height < 0 || cfg.Height > MaxDimension {
		err.Add(fmt.Sprintf("height must be between 0 and %d", MaxDimension))
	}
	if cfg.Regime.Valid() {
		opts := cfg.Options()
		if diameter := 2 * opts.Radius; opts.Bounds.Width <= diameter || opts.Bounds.Height <= diameter {
			err.Add(fmt.Sprintf("width and height must exceed the particle diameter %g, got %gx%g",
				diameter, opts.Bounds.Width, opts.Bounds.Height))
		}
	}
	if cfg.Temperature != nil {
		if terr := validateTemperature(*cfg.Temperature); terr != nil {
			err.Add(terr.Error())
		}
	}
	if cfg.Compare && cfg.Regime != particles.Diffusion {
		err.Add("compare is only available for the diffusion regime")
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func validateTemperature(t float64) error {
	if !(t >= MinTemperature && t <= MaxTemperature) {
		return fmt.Errorf("temperature must be between %d and %d, got %g", MinTemperature, MaxTemperature, t)
	}
	return nil
}
