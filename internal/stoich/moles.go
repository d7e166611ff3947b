// Package stoich implements the amount-of-substance calculators: moles,
// gas volumes, concentrations, empirical formulae, yield and purity.
package stoich

const (
	// AvogadroConstant is the syllabus value of L in mol⁻¹.
	AvogadroConstant = 6.02e23
	// MolarGasVolumeRTP is the volume of one mole of gas at room temperature and pressure, in dm³.
	MolarGasVolumeRTP = 24.0

	displayPrecision = 3
)

// Result is the quantity a calculator solved for.
type Result struct {
	Quantity string  `json:"quantity"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Display  string  `json:"display"`
}

func newResult(quantity string, v float64, unit string) Result {
	return Result{Quantity: quantity, Value: v, Unit: unit, Display: Precision(v, displayPrecision)}
}

func provided(vals ...*float64) int {
	n := 0
	for _, v := range vals {
		if v != nil {
			n++
		}
	}
	return n
}

// MolesMass solves n = m / M for whichever of mass, molar mass and moles is nil.
// Exactly two of the three must be given.
func MolesMass(mass, molarMass, moles *float64) (Result, error) {
	if provided(mass, molarMass, moles) != 2 {
		return Result{}, invalid("", "provide exactly two values")
	}

	switch {
	case moles == nil:
		if *molarMass <= 0 {
			return Result{}, invalid("molar_mass", "valid molar mass (>0) required")
		}
		if *mass < 0 {
			return Result{}, invalid("mass", "valid mass (≥0) required")
		}
		return newResult("moles", *mass / *molarMass, "mol"), nil

	case mass == nil:
		if *molarMass <= 0 {
			return Result{}, invalid("molar_mass", "valid molar mass (>0) required")
		}
		if *moles < 0 {
			return Result{}, invalid("moles", "valid moles (≥0) required")
		}
		return newResult("mass", *moles * *molarMass, "g"), nil

	default:
		if *moles <= 0 {
			return Result{}, invalid("moles", "valid moles (>0) required")
		}
		if *mass < 0 {
			return Result{}, invalid("mass", "valid mass (≥0) required")
		}
		return newResult("molar_mass", *mass / *moles, "g/mol"), nil
	}
}

// Particles returns the number of particles in the given amount.
func Particles(moles float64) (Result, error) {
	if moles < 0 {
		return Result{}, invalid("moles", "need valid moles (≥0) to calculate particles")
	}
	n := moles * AvogadroConstant
	r := Result{Quantity: "particles", Value: n, Display: "0"}
	if n != 0 {
		r.Display = Exponential(n, 3)
	}
	return r, nil
}

// GasVolume converts between gas volume at RTP and amount. Exactly one input must be given.
func GasVolume(volume, moles *float64) (Result, error) {
	if provided(volume, moles) != 1 {
		return Result{}, invalid("", "provide exactly one value")
	}
	if moles == nil {
		if *volume < 0 {
			return Result{}, invalid("volume", "valid volume (≥0 dm³) required")
		}
		return newResult("moles", *volume/MolarGasVolumeRTP, "mol"), nil
	}
	if *moles < 0 {
		return Result{}, invalid("moles", "valid moles (≥0) required")
	}
	return newResult("volume", *moles*MolarGasVolumeRTP, "dm³"), nil
}

// Concentration solves c = n / V for whichever input is nil. Exactly two must be given.
func Concentration(moles, volume, conc *float64) (Result, error) {
	if provided(moles, volume, conc) != 2 {
		return Result{}, invalid("", "provide exactly two values")
	}

	switch {
	case conc == nil:
		if *moles < 0 {
			return Result{}, invalid("moles", "valid moles (≥0) required")
		}
		if *volume <= 0 {
			return Result{}, invalid("volume", "valid volume (>0 dm³) required")
		}
		return newResult("concentration", *moles / *volume, "mol/dm³"), nil

	case moles == nil:
		if *conc < 0 {
			return Result{}, invalid("concentration", "valid concentration (≥0 mol/dm³) required")
		}
		if *volume <= 0 {
			return Result{}, invalid("volume", "valid volume (>0 dm³) required")
		}
		return newResult("moles", *conc * *volume, "mol"), nil

	default:
		if *moles < 0 {
			return Result{}, invalid("moles", "valid moles (≥0) required")
		}
		if *conc <= 0 {
			return Result{}, invalid("concentration", "valid concentration (>0 mol/dm³) required")
		}
		return newResult("volume", *moles / *conc, "dm³"), nil
	}
}
