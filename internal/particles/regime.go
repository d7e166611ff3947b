package particles

import (
	"fmt"
	"strings"
)

// Regime is the motion rule set applied to a particle set.
type Regime int

const (
	Solid Regime = iota
	Liquid
	Gas
	Diffusion
)

// String returns the lower-case name of the regime
func (r Regime) String() string {
	switch r {
	case Solid:
		return "solid"
	case Liquid:
		return "liquid"
	case Gas:
		return "gas"
	case Diffusion:
		return "diffusion"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// ParseRegime parses a regime name (case-insensitive).
func ParseRegime(name string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "solid":
		return Solid, nil
	case "liquid":
		return Liquid, nil
	case "gas":
		return Gas, nil
	case "diffusion":
		return Diffusion, nil
	default:
		return 0, fmt.Errorf("unknown regime: %q", name)
	}
}

// MarshalText encodes r by its lowercase name. Unknown regimes are an error.
func (r Regime) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("unknown regime: %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText accepts any name ParseRegime does.
func (r *Regime) UnmarshalText(text []byte) error {
	parsed, err := ParseRegime(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Valid reports whether r is one of the known regimes.
func (r Regime) Valid() bool {
	return r >= Solid && r <= Diffusion
}

// DefaultTemperature is the slider position the page jumps to when a regime is selected.
func DefaultTemperature(r Regime) float64 {
	switch r {
	case Solid:
		return 1
	case Liquid:
		return 5
	case Gas:
		return 10
	case Diffusion:
		return 2
	default:
		panic(fmt.Sprintf("particles: unknown regime %d", int(r)))
	}
}

// IntensityFromTemperature maps the temperature slider onto the per-step intensity factor.
func IntensityFromTemperature(slider float64) float64 {
	return slider / 2
}
